package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env         string
	Addr        string
	DBDSN       string
	RedisAddr   string
	LogLevel    string
	PresenceTTL time.Duration
	CORSOrigins []string

	FCMProjectID   string
	FCMCredentials string
}

type ClientConfig struct {
	APIURL           *url.URL
	StoragePath      string
	PresenceInterval time.Duration
	HTTPTimeout      time.Duration
	LogLevel         string
}

func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return LoadFromEnv(os.Getenv)
}

func LoadClient() (ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ClientConfig{}, err
	}
	return LoadClientFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:            getenv("APP_ENV"),
		Addr:           getenv("APP_ADDR"),
		DBDSN:          getenv("APP_DB_DSN"),
		RedisAddr:      strings.TrimSpace(getenv("APP_REDIS_ADDR")),
		LogLevel:       getenv("APP_LOG_LEVEL"),
		FCMProjectID:   strings.TrimSpace(getenv("APP_FCM_PROJECT_ID")),
		FCMCredentials: strings.TrimSpace(getenv("APP_FCM_CREDENTIALS")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	ttl, err := durationFromEnv(getenv, "APP_PRESENCE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.PresenceTTL = ttl

	cfg.CORSOrigins = parseCSV(getenv("APP_CORS_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 && !cfg.IsProd() {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.FCMProjectID != "" && cfg.FCMCredentials == "" {
		return Config{}, errors.New("APP_FCM_CREDENTIALS: required when APP_FCM_PROJECT_ID is set")
	}

	if cfg.IsProd() {
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.CORSOrigins) == 0 {
			return Config{}, errors.New("APP_CORS_ORIGINS: required in prod")
		}
	}

	return cfg, nil
}

func LoadClientFromEnv(getenv func(string) string) (ClientConfig, error) {
	cfg := ClientConfig{
		StoragePath: strings.TrimSpace(getenv("APP_STORAGE_PATH")),
		LogLevel:    getenv("APP_LOG_LEVEL"),
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "data/amigos.db"
	}

	rawURL := strings.TrimSpace(getenv("APP_API_URL"))
	if rawURL == "" {
		rawURL = "http://127.0.0.1:8080"
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("APP_API_URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return ClientConfig{}, errors.New("APP_API_URL: must be an absolute URL")
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return ClientConfig{}, errors.New("APP_API_URL: scheme must be http or https")
	}
	cfg.APIURL = parsed

	if cfg.PresenceInterval, err = durationFromEnv(getenv, "APP_PRESENCE_INTERVAL", 10*time.Second); err != nil {
		return ClientConfig{}, err
	}
	if cfg.HTTPTimeout, err = durationFromEnv(getenv, "APP_HTTP_TIMEOUT", 15*time.Second); err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func durationFromEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be > 0", key)
	}
	return d, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

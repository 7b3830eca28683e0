package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"SementesSocial/internal/config"
	"SementesSocial/internal/httpapi"
	"SementesSocial/internal/notifications"
	"SementesSocial/internal/service"
	"SementesSocial/internal/store/memory"
	"SementesSocial/internal/store/postgres"
	redisstore "SementesSocial/internal/store/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	var (
		friendsSvc       *service.FriendsService
		usersSvc         *service.UsersService
		notificationsSvc *service.NotificationService
		dbPing           func(context.Context) error
		redisPing        func(context.Context) error
	)

	presenceSvc := &service.PresenceService{
		Registry: memory.NewPresenceRegistry(),
		TTL:      cfg.PresenceTTL,
		Logger:   logger,
	}

	if cfg.RedisAddr != "" {
		client, err := redisstore.Open(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("redis open failed", "err", err)
			os.Exit(1)
		}
		defer client.Close()

		registry := redisstore.NewPresenceRegistry(client, "")
		presenceSvc.Registry = registry
		redisPing = registry.Ping
		logger.Info("presence registry: redis", "addr", cfg.RedisAddr)
	} else {
		logger.Info("presence registry: memory")
	}

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		if err := postgres.Migrate(ctx, pgPool); err != nil {
			logger.Error("db migrate failed", "err", err)
			os.Exit(1)
		}

		users := postgres.NewUsersStore(pgPool)
		friendships := postgres.NewFriendshipsStore(pgPool)
		userSearch := postgres.NewUserSearchStore(pgPool)
		tokens := postgres.NewNotificationTokensStore(pgPool)

		notificationsSvc = &service.NotificationService{
			Tokens: tokens,
			Users:  users,
			Logger: logger,
		}
		if cfg.FCMProjectID != "" {
			sender, err := notifications.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentials)
			if err != nil {
				logger.Error("fcm sender init failed", "err", err)
				os.Exit(1)
			}
			notificationsSvc.Sender = sender
			logger.Info("push notifications enabled", "project_id", cfg.FCMProjectID)
		}

		friendsSvc = &service.FriendsService{
			Users:       users,
			Friendships: friendships,
			Notifier:    notificationsSvc,
			Logger:      logger,
		}
		usersSvc = &service.UsersService{Store: userSearch}
		presenceSvc.LastSeen = users
		dbPing = pgPool.Ping
	} else {
		logger.Warn("APP_DB_DSN not set: friend and user endpoints will answer 501")
	}

	handler := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:        logger,
		IsProd:        cfg.IsProd(),
		CORSOrigins:   cfg.CORSOrigins,
		DBPing:        dbPing,
		RedisPing:     redisPing,
		Friends:       friendsSvc,
		Users:         usersSvc,
		Presence:      presenceSvc,
		Notifications: notificationsSvc,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

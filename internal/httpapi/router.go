package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"SementesSocial/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	DBPing    func(context.Context) error
	RedisPing func(context.Context) error

	Friends       *service.FriendsService
	Users         *service.UsersService
	Presence      *service.PresenceService
	Notifications *service.NotificationService
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:           logger,
		dbPing:           opts.DBPing,
		redisPing:        opts.RedisPing,
		friendsSvc:       opts.Friends,
		usersSvc:         opts.Users,
		presenceSvc:      opts.Presence,
		notificationsSvc: opts.Notifications,
		requestLimiter:   newRequestLimiter(friendRequestWindow, friendRequestMax),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", api.handleHealthz)

	if api.friendsSvc == nil {
		mux.HandleFunc("GET /api/amigos", handleNotImplemented)
		mux.HandleFunc("POST /api/amigos", handleNotImplemented)
		mux.HandleFunc("DELETE /api/amigos/{id}", handleNotImplemented)
		mux.HandleFunc("GET /api/amigos/solicitacoes", handleNotImplemented)
		mux.HandleFunc("POST /api/amigos/solicitacoes/{id}/aceitar", handleNotImplemented)
		mux.HandleFunc("POST /api/amigos/solicitacoes/{id}/rejeitar", handleNotImplemented)
		mux.HandleFunc("GET /api/amigos/sugeridos", handleNotImplemented)
	} else {
		mux.HandleFunc("GET /api/amigos", api.handleFriendsList)
		mux.HandleFunc("POST /api/amigos", api.handleFriendsCreateRequest)
		mux.HandleFunc("DELETE /api/amigos/{id}", api.handleFriendsRemove)
		mux.HandleFunc("GET /api/amigos/solicitacoes", api.handleFriendsIncoming)
		mux.HandleFunc("POST /api/amigos/solicitacoes/{id}/aceitar", api.handleFriendsAccept)
		mux.HandleFunc("POST /api/amigos/solicitacoes/{id}/rejeitar", api.handleFriendsReject)
		mux.HandleFunc("GET /api/amigos/sugeridos", api.handleFriendsSuggested)
	}

	if api.usersSvc == nil {
		mux.HandleFunc("GET /api/usuarios", handleNotImplemented)
	} else {
		mux.HandleFunc("GET /api/usuarios", api.handleUsersSearch)
	}

	if api.presenceSvc == nil {
		mux.HandleFunc("POST /api/chat/usuarios-online", handleNotImplemented)
		mux.HandleFunc("GET /api/chat/usuarios-online", handleNotImplemented)
	} else {
		mux.HandleFunc("POST /api/chat/usuarios-online", api.handlePresenceAnnounce)
		mux.HandleFunc("GET /api/chat/usuarios-online", api.handlePresenceList)
	}

	if api.notificationsSvc == nil {
		mux.HandleFunc("POST /api/notificacoes/tokens", handleNotImplemented)
	} else {
		mux.HandleFunc("POST /api/notificacoes/tokens", api.handleNotificationsTokenUpsert)
	}

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern == "" {
			handleNotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	h = corsHandler(opts.CORSOrigins)(h)
	return h
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         600,
	})
	return c.Handler
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

// handleNotFound keeps unmatched requests on the JSON error envelope.
func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger

	dbPing    func(context.Context) error
	redisPing func(context.Context) error

	friendsSvc       *service.FriendsService
	usersSvc         *service.UsersService
	presenceSvc      *service.PresenceService
	notificationsSvc *service.NotificationService

	requestLimiter *requestLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"db", a.dbPing},
		{"redis", a.redisPing},
	}
	for _, c := range checks {
		if c.ping == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		err := c.ping(ctx)
		cancel()
		if err != nil {
			a.logger.Warn("healthz: dependency down", "dependency", c.name, "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(c.name + " down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}

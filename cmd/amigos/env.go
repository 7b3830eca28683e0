package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"SementesSocial/internal/apiclient"
	"SementesSocial/internal/config"
	"SementesSocial/internal/domain"
	"SementesSocial/internal/friends"
	"SementesSocial/internal/localstore"
	"SementesSocial/internal/session"
	"SementesSocial/internal/widget"
)

// env is what every command needs: config, the local store and the session
// built on top of it.
type env struct {
	cfg     config.ClientConfig
	logger  *slog.Logger
	storage *localstore.SQLite
	session *session.Provider
	out     io.Writer
	errOut  io.Writer
	in      *bufio.Reader
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.LogLevel)

	storage, err := localstore.OpenSQLite(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	return &env{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
		session: session.NewProvider(storage, logger),
		out:     c.App.Writer,
		errOut:  c.App.ErrWriter,
		in:      bufio.NewReader(c.App.Reader),
	}, nil
}

func (e *env) Close() error { return e.storage.Close() }

// mount builds the widget and mounts it. A missing session becomes a hint to
// run login.
func (e *env) mount(ctx context.Context, opts widget.Opts) (*widget.Widget, error) {
	client := apiclient.New(e.cfg.APIURL, &http.Client{}, e.cfg.HTTPTimeout)

	opts.Session = e.session
	opts.API = client
	opts.Logger = e.logger
	opts.PresenceInterval = e.cfg.PresenceInterval
	if opts.Notifier == nil {
		opts.Notifier = widget.NotifyFunc(func(level widget.Level, msg string) {
			fmt.Fprintf(e.errOut, "[%s] %s\n", level, msg)
		})
	}
	if opts.Confirmer == nil {
		opts.Confirmer = e.promptConfirmer()
	}

	w := widget.New(opts)
	if err := w.Mount(ctx); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return nil, cli.Exit("sessão não encontrada: rode `amigos login --id <id> --nome <nome>`", 2)
		}
		return nil, err
	}
	return w, nil
}

func (e *env) promptConfirmer() friends.ConfirmFunc {
	return func(_ context.Context, prompt string) bool {
		fmt.Fprintf(e.out, "%s [s/N] ", prompt)
		line, err := e.in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "sim", "y", "yes":
			return true
		}
		return false
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

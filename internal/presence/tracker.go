// Package presence keeps the actor visible in the shared online registry and
// mirrors the registry's current contents for display.
package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"SementesSocial/internal/domain"
)

const DefaultInterval = 10 * time.Second

type API interface {
	AnnounceOnline(ctx context.Context, userID string) error
	OnlineUsers(ctx context.Context) ([]string, error)
}

// Tracker runs two independent polling loops: one announcing the actor and
// one replacing the online snapshot. There is no ordering between them.
type Tracker struct {
	api      API
	actor    domain.Actor
	interval time.Duration
	logger   *slog.Logger

	// OnChange, if set, receives a copy of the snapshot after each successful
	// query. Set it before Start.
	OnChange func(online []string)

	mu     sync.Mutex
	online []string
	index  map[string]struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTracker(api API, actor domain.Actor, interval time.Duration, logger *slog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		api:      api,
		actor:    actor,
		interval: interval,
		logger:   logger.With("user_id", actor.ID),
		online:   []string{},
		index:    map[string]struct{}{},
	}
}

// Start launches both loops. Each fires once immediately. Calling Start on a
// running tracker does nothing.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(2)
	go t.loop(ctx, func(ctx context.Context) { _ = t.Announce(ctx) })
	go t.loop(ctx, func(ctx context.Context) { _ = t.Refresh(ctx) })
}

// Stop cancels both loops and waits for them to return. It is safe to call
// more than once.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}

func (t *Tracker) loop(ctx context.Context, tick func(context.Context)) {
	defer t.wg.Done()

	tick(ctx)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// Announce pings the registry once. Failures are logged and returned; the
// loop ignores them and waits for the next tick.
func (t *Tracker) Announce(ctx context.Context) error {
	if err := t.api.AnnounceOnline(ctx, t.actor.ID); err != nil {
		if ctx.Err() == nil {
			t.logger.Debug("presence: announce failed", "err", err)
		}
		return err
	}
	return nil
}

// Refresh queries the registry once and replaces the snapshot with the
// result. On failure the previous snapshot is kept.
func (t *Tracker) Refresh(ctx context.Context) error {
	ids, err := t.api.OnlineUsers(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Debug("presence: query failed", "err", err)
		}
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	snapshot := append([]string{}, ids...)
	index := make(map[string]struct{}, len(snapshot))
	for _, id := range snapshot {
		index[id] = struct{}{}
	}

	t.mu.Lock()
	t.online = snapshot
	t.index = index
	t.mu.Unlock()

	if t.OnChange != nil {
		t.OnChange(append([]string{}, snapshot...))
	}
	return nil
}

func (t *Tracker) Online() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string{}, t.online...)
}

func (t *Tracker) IsOnline(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.index[userID]
	return ok
}

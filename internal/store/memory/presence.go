// Package memory holds a single-process presence registry used when no
// Redis address is configured.
package memory

import (
	"context"
	"sync"
	"time"
)

type PresenceRegistry struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{lastSeen: make(map[string]time.Time)}
}

func (r *PresenceRegistry) Touch(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.lastSeen[userID]; ok && prev.After(at) {
		return nil
	}
	r.lastSeen[userID] = at
	return nil
}

// Online drops entries last seen before since and returns the rest in no
// particular order.
func (r *PresenceRegistry) Online(_ context.Context, since time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.lastSeen))
	for id, at := range r.lastSeen {
		if at.Before(since) {
			delete(r.lastSeen, id)
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (r *PresenceRegistry) Ping(context.Context) error { return nil }

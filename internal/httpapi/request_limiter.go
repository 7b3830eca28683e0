package httpapi

import (
	"sync"
	"time"
)

const (
	friendRequestWindow = 10 * time.Minute
	friendRequestMax    = 20
)

// requestLimiter is a sliding-window counter keyed by requester id.
type requestLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time
}

func newRequestLimiter(window time.Duration, max int) *requestLimiter {
	return &requestLimiter{
		window:  window,
		max:     max,
		entries: make(map[string][]time.Time),
	}
}

func (l *requestLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.prune(l.entries[key], cutoff)
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)

	// Keys that went quiet would otherwise pile up forever.
	if len(l.entries) > 4096 {
		for k, ts := range l.entries {
			if ts = l.prune(ts, cutoff); len(ts) == 0 {
				delete(l.entries, k)
			} else {
				l.entries[k] = ts
			}
		}
	}
	return true
}

func (l *requestLimiter) prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Package presencetest holds the behaviour every presence registry must
// share, run against each implementation from its own tests.
package presencetest

import (
	"context"
	"slices"
	"testing"
	"time"
)

type Registry interface {
	Touch(ctx context.Context, userID string, at time.Time) error
	Online(ctx context.Context, since time.Time) ([]string, error)
}

// Run exercises a fresh registry from newRegistry for every case.
func Run(t *testing.T, newRegistry func(t *testing.T) Registry) {
	t.Run("expiry", func(t *testing.T) { testExpiry(t, newRegistry(t)) })
	t.Run("cutoff is inclusive", func(t *testing.T) { testInclusiveCutoff(t, newRegistry(t)) })
	t.Run("keeps newest ping", func(t *testing.T) { testKeepsNewestPing(t, newRegistry(t)) })
	t.Run("empty", func(t *testing.T) { testEmpty(t, newRegistry(t)) })
}

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func online(t *testing.T, r Registry, since time.Time) []string {
	t.Helper()
	got, err := r.Online(context.Background(), since)
	if err != nil {
		t.Fatalf("online: %v", err)
	}
	slices.Sort(got)
	return got
}

func touch(t *testing.T, r Registry, id string, at time.Time) {
	t.Helper()
	if err := r.Touch(context.Background(), id, at); err != nil {
		t.Fatalf("touch %s: %v", id, err)
	}
}

func testExpiry(t *testing.T, r Registry) {
	touch(t, r, "u1", base)
	touch(t, r, "u2", base.Add(20*time.Second))

	if got := online(t, r, base.Add(-time.Second)); !slices.Equal(got, []string{"u1", "u2"}) {
		t.Fatalf("expected both online, got %v", got)
	}
	if got := online(t, r, base.Add(10*time.Second)); !slices.Equal(got, []string{"u2"}) {
		t.Fatalf("expected only u2, got %v", got)
	}
	// u1 was pruned, an older cutoff does not bring it back.
	if got := online(t, r, base.Add(-time.Hour)); !slices.Equal(got, []string{"u2"}) {
		t.Fatalf("expected pruned entry to stay gone, got %v", got)
	}
}

func testInclusiveCutoff(t *testing.T, r Registry) {
	touch(t, r, "u1", base)
	touch(t, r, "u2", base.Add(-time.Millisecond))

	if got := online(t, r, base); !slices.Equal(got, []string{"u1"}) {
		t.Fatalf("ping exactly at the cutoff should count, got %v", got)
	}
}

func testKeepsNewestPing(t *testing.T, r Registry) {
	touch(t, r, "u1", base.Add(time.Minute))
	touch(t, r, "u1", base)

	if got := online(t, r, base.Add(30*time.Second)); !slices.Equal(got, []string{"u1"}) {
		t.Fatalf("out-of-order ping should not rewind, got %v", got)
	}
}

func testEmpty(t *testing.T, r Registry) {
	if got := online(t, r, base); len(got) != 0 {
		t.Fatalf("expected nobody online, got %v", got)
	}
}

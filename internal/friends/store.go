// Package friends is the client-side view of the actor's social graph:
// confirmed friends, inbound requests, suggestions and search results.
//
// Every mutation is followed by a full reload instead of a local patch, so
// the lists only ever hold what the backend last returned.
package friends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"SementesSocial/internal/domain"
)

// MinSearchLength is the shortest trimmed query that reaches the backend.
const MinSearchLength = 2

var ErrNotConfirmed = errors.New("not_confirmed")

type API interface {
	ListFriends(ctx context.Context, userID string) ([]domain.Friend, error)
	ListPendingRequests(ctx context.Context, userID string) ([]domain.PendingRequest, error)
	ListSuggested(ctx context.Context, userID string) ([]domain.SuggestedUser, error)
	SearchUsers(ctx context.Context, query string) ([]domain.SuggestedUser, error)
	SendRequest(ctx context.Context, userID, friendID string) error
	AcceptRequest(ctx context.Context, requestID string) error
	RejectRequest(ctx context.Context, requestID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// MutationError reports a failed write. The lists are left as they were.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *MutationError) Unwrap() error { return e.Err }

type section[T any] struct {
	items   []T
	seq     uint64
	loading bool
}

// apply stores items unless a newer load already landed. The loading flag is
// only cleared by the most recently issued load.
func (s *section[T]) apply(seq, latest uint64, items []T) bool {
	if seq < s.seq {
		return false
	}
	if items == nil {
		items = []T{}
	}
	s.items = items
	s.seq = seq
	if seq == latest {
		s.loading = false
	}
	return true
}

// settle clears the loading flag for a load that ends without applying.
func (s *section[T]) settle(seq, latest uint64) {
	if seq == latest {
		s.loading = false
	}
}

type Store struct {
	api    API
	actor  domain.Actor
	logger *slog.Logger

	mu        sync.Mutex
	issued    uint64
	friends   section[domain.Friend]
	pending   section[domain.PendingRequest]
	suggested section[domain.SuggestedUser]

	searchIssued uint64
	results      section[domain.SuggestedUser]
}

func NewStore(api API, actor domain.Actor, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:    api,
		actor:  actor,
		logger: logger.With("user_id", actor.ID),
	}
}

// LoadAll fetches the three lists concurrently. A failed fetch leaves only its
// own list empty. Responses from a load older than the last applied one are
// dropped, and nothing is applied once ctx is done.
func (s *Store) LoadAll(ctx context.Context) domain.Relationships {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.friends.loading = true
	s.pending.loading = true
	s.suggested.loading = true
	s.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		items, err := s.api.ListFriends(ctx, s.actor.ID)
		if err != nil {
			s.logger.Warn("friends: load friends failed", "err", err)
			items = nil
		}
		commit(s, ctx, "friends", &s.friends, seq, items)
		return nil
	})
	g.Go(func() error {
		items, err := s.api.ListPendingRequests(ctx, s.actor.ID)
		if err != nil {
			s.logger.Warn("friends: load pending requests failed", "err", err)
			items = nil
		}
		commit(s, ctx, "pending", &s.pending, seq, items)
		return nil
	})
	g.Go(func() error {
		items, err := s.api.ListSuggested(ctx, s.actor.ID)
		if err != nil {
			s.logger.Warn("friends: load suggestions failed", "err", err)
			items = nil
		}
		commit(s, ctx, "suggested", &s.suggested, seq, items)
		return nil
	})
	_ = g.Wait()

	return s.Snapshot()
}

// commit applies items to sec unless ctx is done, in which case only the
// loading flag is settled.
func commit[T any](s *Store, ctx context.Context, list string, sec *section[T], seq uint64, items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		sec.settle(seq, s.issued)
		return
	}
	if !sec.apply(seq, s.issued, items) {
		s.logger.Debug("friends: dropped stale response", "list", list)
	}
}

// Search looks users up by name or email. Queries shorter than
// MinSearchLength return an empty result without calling the backend.
func (s *Store) Search(ctx context.Context, query string) []domain.SuggestedUser {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	s.searchIssued++
	seq := s.searchIssued
	if utf8.RuneCountInString(query) < MinSearchLength {
		s.results.apply(seq, seq, nil)
		s.mu.Unlock()
		return []domain.SuggestedUser{}
	}
	s.results.loading = true
	s.mu.Unlock()

	found, err := s.api.SearchUsers(ctx, query)
	if err != nil {
		s.logger.Warn("friends: search failed", "err", err)
		found = nil
	}

	out := make([]domain.SuggestedUser, 0, len(found))
	for _, u := range found {
		if u.ID == s.actor.ID {
			continue
		}
		out = append(out, u)
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.results.settle(seq, s.searchIssued)
	} else {
		s.results.apply(seq, s.searchIssued, out)
	}
	s.mu.Unlock()
	return out
}

func (s *Store) SendRequest(ctx context.Context, targetID string) error {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return domain.FieldError("amigoId", "required")
	}
	if targetID == s.actor.ID {
		return domain.FieldError("amigoId", "cannot friend yourself")
	}
	return s.mutate(ctx, "send_request", func() error {
		return s.api.SendRequest(ctx, s.actor.ID, targetID)
	})
}

func (s *Store) AcceptRequest(ctx context.Context, requestID string) error {
	if strings.TrimSpace(requestID) == "" {
		return domain.FieldError("id", "required")
	}
	return s.mutate(ctx, "accept_request", func() error {
		return s.api.AcceptRequest(ctx, requestID)
	})
}

func (s *Store) RejectRequest(ctx context.Context, requestID string) error {
	if strings.TrimSpace(requestID) == "" {
		return domain.FieldError("id", "required")
	}
	return s.mutate(ctx, "reject_request", func() error {
		return s.api.RejectRequest(ctx, requestID)
	})
}

// RemoveFriend deletes the friendship after confirm approves it. Without an
// affirmative answer it returns ErrNotConfirmed and calls nothing.
func (s *Store) RemoveFriend(ctx context.Context, friendID string, confirm Confirmer) error {
	if strings.TrimSpace(friendID) == "" {
		return domain.FieldError("id", "required")
	}
	if confirm == nil || !confirm.Confirm(ctx, s.removePrompt(friendID)) {
		return ErrNotConfirmed
	}
	return s.mutate(ctx, "remove_friend", func() error {
		return s.api.RemoveFriend(ctx, s.actor.ID, friendID)
	})
}

func (s *Store) mutate(ctx context.Context, op string, call func() error) error {
	if err := call(); err != nil {
		s.logger.Warn("friends: mutation failed", "op", op, "err", err)
		return &MutationError{Op: op, Err: err}
	}
	s.LoadAll(ctx)
	return nil
}

func (s *Store) removePrompt(friendID string) string {
	name := friendID
	for _, f := range s.Friends() {
		if f.ID == friendID && f.Nome != "" {
			name = f.Nome
			break
		}
	}
	return fmt.Sprintf("Remover %s da sua lista de amigos?", name)
}

func (s *Store) Actor() domain.Actor { return s.actor }

func (s *Store) Friends() []domain.Friend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Friend{}, s.friends.items...)
}

// Pending returns inbound requests, minus any whose sender is already a
// friend.
func (s *Store) Pending() []domain.PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *Store) pendingLocked() []domain.PendingRequest {
	friendIDs := make(map[string]struct{}, len(s.friends.items))
	for _, f := range s.friends.items {
		friendIDs[f.ID] = struct{}{}
	}
	out := make([]domain.PendingRequest, 0, len(s.pending.items))
	for _, p := range s.pending.items {
		if _, ok := friendIDs[p.RemetenteID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Store) Suggested() []domain.SuggestedUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SuggestedUser{}, s.suggested.items...)
}

func (s *Store) SearchResults() []domain.SuggestedUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SuggestedUser{}, s.results.items...)
}

func (s *Store) Snapshot() domain.Relationships {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Relationships{
		Friends:   append([]domain.Friend{}, s.friends.items...),
		Pending:   s.pendingLocked(),
		Suggested: append([]domain.SuggestedUser{}, s.suggested.items...),
	}
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friends.loading || s.pending.loading || s.suggested.loading
}

func (s *Store) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.loading
}

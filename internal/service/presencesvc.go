package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"SementesSocial/internal/domain"
)

const DefaultPresenceTTL = 30 * time.Second

// PresenceRegistry stores the last ping per user. Implementations live in
// store/redis and store/memory.
type PresenceRegistry interface {
	Touch(ctx context.Context, userID string, at time.Time) error
	Online(ctx context.Context, since time.Time) ([]string, error)
}

type LastSeenStore interface {
	TouchLastSeen(ctx context.Context, id string, when time.Time) error
}

type PresenceService struct {
	Registry PresenceRegistry
	// LastSeen is optional; when set each ping also feeds the friend status.
	LastSeen LastSeenStore
	TTL      time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *PresenceService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultPresenceTTL
	}
	return s.TTL
}

func (s *PresenceService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *PresenceService) Announce(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.FieldError("userId", "required")
	}
	now := s.now()
	if err := s.Registry.Touch(ctx, userID, now); err != nil {
		return err
	}
	if s.LastSeen != nil {
		if err := s.LastSeen.TouchLastSeen(ctx, userID, now); err != nil {
			logger := s.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("presence: touch last seen failed", "err", err, "user_id", userID)
		}
	}
	return nil
}

// Online returns the ids pinged within the TTL, sorted.
func (s *PresenceService) Online(ctx context.Context) ([]string, error) {
	ids, err := s.Registry.Online(ctx, s.now().Add(-s.ttl()))
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	slices.Sort(ids)
	return ids, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SementesSocial/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationTokensStore struct {
	pool *pgxpool.Pool
}

func NewNotificationTokensStore(pool *pgxpool.Pool) *NotificationTokensStore {
	return &NotificationTokensStore{pool: pool}
}

// UpsertToken binds token to userID. A token seen before moves to the new
// user, since a device has one signed-in account at a time.
func (s *NotificationTokensStore) UpsertToken(ctx context.Context, t domain.NotificationToken) (domain.NotificationToken, error) {
	if !validUUID(t.UserID) {
		return domain.NotificationToken{}, domain.ErrNotFound
	}
	const q = `
		INSERT INTO notification_tokens (user_id, token, platform, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (token)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, token, platform, created_at, updated_at
	`

	rows, err := s.pool.Query(ctx, q, t.UserID, t.Token, t.Platform, t.UpdatedAt)
	if err != nil {
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}
	saved, err := pgx.CollectExactlyOneRow(rows, scanToken)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.NotificationToken{}, domain.ErrNotFound
		}
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}
	return saved, nil
}

// DeleteToken drops a token regardless of owner. Used when the push
// provider reports it unregistered.
func (s *NotificationTokensStore) DeleteToken(ctx context.Context, token string) error {
	const q = `DELETE FROM notification_tokens WHERE token = $1`
	if _, err := s.pool.Exec(ctx, q, token); err != nil {
		return fmt.Errorf("delete notification token: %w", err)
	}
	return nil
}

func (s *NotificationTokensStore) ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error) {
	if !validUUID(userID) {
		return nil, nil
	}
	const q = `
		SELECT id, user_id, token, platform, created_at, updated_at
		FROM notification_tokens
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanToken)
	if err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	return out, nil
}

func scanToken(row pgx.CollectableRow) (domain.NotificationToken, error) {
	var (
		t        domain.NotificationToken
		idUUID   pgtype.UUID
		userUUID pgtype.UUID
		created  time.Time
		updated  time.Time
	)
	if err := row.Scan(&idUUID, &userUUID, &t.Token, &t.Platform, &created, &updated); err != nil {
		return domain.NotificationToken{}, err
	}
	t.ID = uuidOrEmpty(idUUID)
	t.UserID = uuidOrEmpty(userUUID)
	t.CreatedAt = created
	t.UpdatedAt = updated
	return t, nil
}

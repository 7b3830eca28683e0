package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SementesSocial/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if !validUUID(id) {
		return domain.User{}, domain.ErrNotFound
	}
	const q = `
		SELECT id, email, nome, nivel, sementes, status, created_at, last_seen_at
		FROM users
		WHERE id = $1
	`

	var (
		u          domain.User
		idUUID     pgtype.UUID
		emailText  pgtype.Text
		lastSeenTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&idUUID,
		&emailText,
		&u.Nome,
		&u.Nivel,
		&u.Sementes,
		&u.Status,
		&u.CreatedAt,
		&lastSeenTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.LastSeenAt = timestamptzPtr(lastSeenTS)
	return u, nil
}

// TouchLastSeen records a presence ping. Unknown ids are ignored.
func (s *UsersStore) TouchLastSeen(ctx context.Context, id string, when time.Time) error {
	if !validUUID(id) {
		return nil
	}
	const q = `UPDATE users SET last_seen_at = $2 WHERE id = $1`
	if _, err := s.pool.Exec(ctx, q, id, when); err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}

// ListSuggested returns active users with no friendship row of any status
// with userID, highest balance first.
func (s *UsersStore) ListSuggested(ctx context.Context, userID string, limit int) ([]domain.SuggestedUser, error) {
	if !validUUID(userID) {
		return []domain.SuggestedUser{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	const q = `
		SELECT u.id, u.nome, u.email, u.nivel, u.sementes
		FROM users u
		WHERE u.status = 'active'
		  AND u.id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM friendships f
			WHERE (f.requester_id = $1 AND f.addressee_id = u.id)
			   OR (f.addressee_id = $1 AND f.requester_id = u.id)
		  )
		ORDER BY u.sementes DESC, u.nome ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list suggested users: %w", err)
	}
	defer rows.Close()
	return scanSuggested(rows, "list suggested users")
}

func scanSuggested(rows pgx.Rows, op string) ([]domain.SuggestedUser, error) {
	out := []domain.SuggestedUser{}
	for rows.Next() {
		var (
			u         domain.SuggestedUser
			idUUID    pgtype.UUID
			emailText pgtype.Text
		)
		if err := rows.Scan(&idUUID, &u.Nome, &emailText, &u.Nivel, &u.Sementes); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		u.ID = uuidOrEmpty(idUUID)
		u.Email = textOrEmpty(emailText)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

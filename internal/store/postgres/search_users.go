package postgres

import (
	"context"
	"fmt"
	"strings"

	"SementesSocial/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserSearchStore struct {
	pool *pgxpool.Pool
}

func NewUserSearchStore(pool *pgxpool.Pool) *UserSearchStore {
	return &UserSearchStore{pool: pool}
}

// SearchUsers matches active users by name or email, case-insensitively.
func (s *UserSearchStore) SearchUsers(ctx context.Context, q string, limit int) ([]domain.SuggestedUser, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.SuggestedUser{}, nil
	}

	like := "%" + escapeLike(q) + "%"
	const query = `
		SELECT id, nome, email, nivel, sementes
		FROM users
		WHERE status = 'active'
		  AND (nome ILIKE $1 OR email ILIKE $1)
		ORDER BY nome ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()
	return scanSuggested(rows, "search users")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id           UUID         PRIMARY KEY DEFAULT gen_random_uuid(),
			email        TEXT         UNIQUE,
			nome         TEXT         NOT NULL,
			nivel        TEXT         NOT NULL DEFAULT 'Semente',
			sementes     INTEGER      NOT NULL DEFAULT 0,
			status       TEXT         NOT NULL DEFAULT 'active',
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_seen_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS friendships (
			id           UUID         PRIMARY KEY DEFAULT gen_random_uuid(),
			requester_id UUID         NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			addressee_id UUID         NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status       TEXT         NOT NULL DEFAULT 'pending',
			message      TEXT,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			responded_at TIMESTAMPTZ,
			CHECK (requester_id <> addressee_id)
		)`,

		`CREATE TABLE IF NOT EXISTS notification_tokens (
			id         UUID         PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id    UUID         NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token      TEXT         NOT NULL UNIQUE,
			platform   TEXT         NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS friendships_pair_uq
			ON friendships (LEAST(requester_id, addressee_id), GREATEST(requester_id, addressee_id))`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_addressee ON friendships(addressee_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_requester ON friendships(requester_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_users_nome ON users(nome)`,
		`CREATE INDEX IF NOT EXISTS idx_notification_tokens_user ON notification_tokens(user_id)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

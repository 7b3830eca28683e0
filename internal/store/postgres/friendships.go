package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SementesSocial/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FriendshipsStore struct {
	pool *pgxpool.Pool
}

func NewFriendshipsStore(pool *pgxpool.Pool) *FriendshipsStore {
	return &FriendshipsStore{pool: pool}
}

func (s *FriendshipsStore) CreateRequest(ctx context.Context, requesterID, addresseeID, message string) (string, time.Time, error) {
	const q = `
		INSERT INTO friendships (requester_id, addressee_id, status, message)
		VALUES ($1, $2, 'pending', NULLIF($3, ''))
		RETURNING id, created_at
	`

	var (
		idUUID    pgtype.UUID
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx, q, requesterID, addresseeID, message).Scan(&idUUID, &createdAt)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "friendships_pair_uq" {
			return "", time.Time{}, domain.ErrFriendshipExists
		}
		return "", time.Time{}, fmt.Errorf("create friend request: %w", err)
	}

	return uuidOrEmpty(idUUID), createdAt, nil
}

func (s *FriendshipsStore) Accept(ctx context.Context, requestID string, when time.Time) error {
	if !validUUID(requestID) {
		return domain.ErrNotFound
	}
	const q = `
		UPDATE friendships
		SET status = 'accepted', responded_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	ct, err := s.pool.Exec(ctx, q, requestID, when)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reject deletes the pending row so the pair may be requested again later.
func (s *FriendshipsStore) Reject(ctx context.Context, requestID string) error {
	if !validUUID(requestID) {
		return domain.ErrNotFound
	}
	const q = `DELETE FROM friendships WHERE id = $1 AND status = 'pending'`
	ct, err := s.pool.Exec(ctx, q, requestID)
	if err != nil {
		return fmt.Errorf("reject friend request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Remove deletes the accepted edge between the two users, whichever side
// created it.
func (s *FriendshipsStore) Remove(ctx context.Context, userID, friendID string) error {
	if !validUUID(userID) || !validUUID(friendID) {
		return domain.ErrNotFound
	}
	const q = `
		DELETE FROM friendships
		WHERE status = 'accepted'
		  AND ((requester_id = $1 AND addressee_id = $2) OR (requester_id = $2 AND addressee_id = $1))
	`
	ct, err := s.pool.Exec(ctx, q, userID, friendID)
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *FriendshipsStore) ListFriends(ctx context.Context, userID string, now time.Time) ([]domain.Friend, error) {
	if !validUUID(userID) {
		return []domain.Friend{}, nil
	}
	const q = `
		SELECT u.id, u.nome, u.email, u.nivel, u.sementes, u.last_seen_at
		FROM friendships f
		JOIN users u ON u.id = CASE
			WHEN f.requester_id = $1 THEN f.addressee_id
			ELSE f.requester_id
		END
		WHERE f.status = 'accepted' AND (f.requester_id = $1 OR f.addressee_id = $1)
		ORDER BY u.nome ASC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	out := []domain.Friend{}
	for rows.Next() {
		var (
			f          domain.Friend
			idUUID     pgtype.UUID
			emailText  pgtype.Text
			lastSeenTS pgtype.Timestamptz
		)
		if err := rows.Scan(&idUUID, &f.Nome, &emailText, &f.Nivel, &f.Sementes, &lastSeenTS); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		f.ID = uuidOrEmpty(idUUID)
		f.Email = textOrEmpty(emailText)
		f.Status = friendStatus(lastSeenTS, now)
		if lastSeenTS.Valid {
			f.UltimaAtividade = lastSeenTS.Time
		}
		f.Mutual = true
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}

func (s *FriendshipsStore) ListIncoming(ctx context.Context, userID string) ([]domain.PendingRequest, error) {
	if !validUUID(userID) {
		return []domain.PendingRequest{}, nil
	}
	const q = `
		SELECT f.id, f.created_at, f.message, u.id, u.nome, u.email
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.status = 'pending' AND f.addressee_id = $1
		ORDER BY f.created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	defer rows.Close()

	out := []domain.PendingRequest{}
	for rows.Next() {
		var (
			p           domain.PendingRequest
			reqIDUUID   pgtype.UUID
			messageText pgtype.Text
			fromIDUUID  pgtype.UUID
			emailText   pgtype.Text
		)
		if err := rows.Scan(&reqIDUUID, &p.DataEnvio, &messageText, &fromIDUUID, &p.RemetenteNome, &emailText); err != nil {
			return nil, fmt.Errorf("scan incoming request: %w", err)
		}
		p.ID = uuidOrEmpty(reqIDUUID)
		p.Mensagem = textOrEmpty(messageText)
		p.RemetenteID = uuidOrEmpty(fromIDUUID)
		p.RemetenteEmail = textOrEmpty(emailText)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return out, nil
}

package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"SementesSocial/internal/domain"
)

func textOrEmpty(t pgtype.Text) string {
	if t.Valid {
		return t.String
	}
	return ""
}

func timestamptzPtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time
	return &tt
}

func uuidOrEmpty(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// validUUID guards queries against ids Postgres would reject with a cast
// error. Such ids cannot match any row.
func validUUID(id string) bool {
	var u pgtype.UUID
	return u.Scan(id) == nil && u.Valid
}

// friendStatus derives the informational status from the last ping time.
func friendStatus(lastSeen pgtype.Timestamptz, now time.Time) domain.FriendStatus {
	if !lastSeen.Valid {
		return domain.FriendStatusOffline
	}
	return domain.StatusFromLastSeen(lastSeen.Time, now)
}

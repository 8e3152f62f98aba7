package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one issued refresh token. Rows are never deleted on
// rotation, only revoked.
type RefreshToken struct {
	BaseSimple
	Token     string    `db:"token"`
	UserID    uuid.UUID `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
}

func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

package auth

import (
	"context"
	"time"

	"taskhive/internal/core/id"
)

// RefreshToken is one opaque refresh credential. Only the SHA-256 hash of
// the token is stored; the raw value exists client-side only.
type RefreshToken struct {
	ID        id.ID      `db:"id"`
	UserID    id.ID      `db:"user_id"`
	OrgID     id.ID      `db:"org_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	Revoked   bool       `db:"revoked"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// Valid reports whether the token can still be exchanged.
func (t *RefreshToken) Valid(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// TokenRepository persists refresh tokens.
type TokenRepository interface {
	Store(ctx context.Context, t *RefreshToken) error

	// GetByHash returns the token with the given hash, revoked or not.
	GetByHash(ctx context.Context, hash string) (*RefreshToken, error)

	Revoke(ctx context.Context, tokenID id.ID) error

	// RevokeAllForUser revokes every live token of one user.
	RevokeAllForUser(ctx context.Context, userID id.ID) error
}

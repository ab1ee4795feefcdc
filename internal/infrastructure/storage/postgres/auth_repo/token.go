// Package auth_repo provides PostgreSQL storage for refresh tokens.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/auth"
	"taskhive/internal/infrastructure/storage/postgres"
)

const tokenTable = "auth_refresh_tokens"

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct {
	txm *postgres.TxManager
}

// NewTokenRepo creates a new refresh token repository.
func NewTokenRepo(txm *postgres.TxManager) *TokenRepo {
	return &TokenRepo{txm: txm}
}

func (r *TokenRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Store inserts a refresh token.
func (r *TokenRepo) Store(ctx context.Context, t *auth.RefreshToken) error {
	q := r.builder().
		Insert(tokenTable).
		SetMap(map[string]any{
			"id":         t.ID,
			"user_id":    t.UserID,
			"org_id":     t.OrgID,
			"token_hash": t.TokenHash,
			"expires_at": t.ExpiresAt,
			"revoked":    t.Revoked,
			"created_at": t.CreatedAt,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build token insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetByHash returns the token with the given hash.
func (r *TokenRepo) GetByHash(ctx context.Context, hash string) (*auth.RefreshToken, error) {
	q := r.builder().
		Select("id", "user_id", "org_id", "token_hash", "expires_at",
			"revoked", "revoked_at", "created_at").
		From(tokenTable).
		Where(squirrel.Eq{"token_hash": hash}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build token select: %w", err)
	}

	var t auth.RefreshToken
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refresh_token", hash)
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	return &t, nil
}

// Revoke marks one token revoked.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID id.ID) error {
	return r.revoke(ctx, squirrel.Eq{"id": tokenID})
}

// RevokeAllForUser revokes every live token of one user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID id.ID) error {
	return r.revoke(ctx, squirrel.Eq{"user_id": userID, "revoked": false})
}

func (r *TokenRepo) revoke(ctx context.Context, pred squirrel.Eq) error {
	q := r.builder().
		Update(tokenTable).
		Set("revoked", true).
		Set("revoked_at", time.Now().UTC()).
		Where(pred)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build token revoke: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

var _ auth.TokenRepository = (*TokenRepo)(nil)

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/user"
	"taskhive/pkg/logger"
)

// RefreshTokenTTL is how long a refresh token stays exchangeable.
const RefreshTokenTTL = 30 * 24 * time.Hour

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Service implements login, token refresh with rotation, and logout.
// Soft-deleted users cannot authenticate: the user lookup goes through the
// live-only read path.
type Service struct {
	users  *user.Service
	tokens TokenRepository
	jwt    *JWTService
}

// NewService creates an auth service.
func NewService(users *user.Service, tokens TokenRepository, jwtSvc *JWTService) *Service {
	return &Service{users: users, tokens: tokens, jwt: jwtSvc}
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies credentials and issues a token pair. The failure message
// never distinguishes unknown email from wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "org_id", u.OrgID)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the
// old token (rotation).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.tokens.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	if !stored.Valid(time.Now().UTC()) {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	// The user may have been tombstoned since the token was issued.
	u, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	return s.issue(ctx, u)
}

// Logout revokes every live refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *Service) issue(ctx context.Context, u *user.User) (*TokenPair, error) {
	access, expiresAt, err := s.jwt.GenerateAccessToken(&appctx.UserContext{
		UserID: u.ID,
		OrgID:  u.OrgID,
		DeptID: u.DeptID,
		Email:  u.Email,
		Role:   u.Role,
	})
	if err != nil {
		return nil, err
	}

	raw, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Store(ctx, &RefreshToken{
		ID:        id.New(),
		UserID:    u.ID,
		OrgID:     u.OrgID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().UTC().Add(RefreshTokenTTL),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
	}, nil
}

func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Package auth provides authentication: password verification, JWT access
// tokens, and rotating refresh tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "taskhive",
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Claims represents JWT claims. Tenant scope travels in the token so every
// request is bound to one organization without a lookup.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"uid"`
	OrgID   string `json:"org"`
	DeptID  string `json:"dept,omitempty"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"adm,omitempty"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken signs a token for the authenticated user.
func (s *JWTService) GenerateAccessToken(u *appctx.UserContext) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   u.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:  u.UserID.String(),
		OrgID:   u.OrgID.String(),
		DeptID:  u.DeptID.String(),
		Email:   u.Email,
		Role:    string(u.Role),
		IsAdmin: u.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT and returns the user context it encodes.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := id.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid uid claim: %w", err)
	}
	orgID, err := id.Parse(claims.OrgID)
	if err != nil {
		return nil, fmt.Errorf("invalid org claim: %w", err)
	}

	deptID := id.Nil()
	if claims.DeptID != "" {
		if deptID, err = id.Parse(claims.DeptID); err != nil {
			return nil, fmt.Errorf("invalid dept claim: %w", err)
		}
	}

	return &appctx.UserContext{
		UserID:  userID,
		OrgID:   orgID,
		DeptID:  deptID,
		Email:   claims.Email,
		Role:    appctx.Role(claims.Role),
		IsAdmin: claims.IsAdmin,
	}, nil
}

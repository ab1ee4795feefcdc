// Package user holds organization members.
package user

import (
	"context"
	"strings"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/entity"
)

// EntityType is the discriminator for the cascade registry.
const EntityType = "user"

// User is a member of a department within an organization.
type User struct {
	entity.Base
	entity.DeptScoped

	Email        string      `db:"email" json:"email"`
	FullName     string      `db:"full_name" json:"fullName"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         appctx.Role `db:"role" json:"role"`
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperror.NewValidation("valid email is required")
	}
	if u.FullName == "" {
		return apperror.NewValidation("full name is required")
	}

	switch u.Role {
	case appctx.RoleHead, appctx.RoleDeputyHead, appctx.RoleMember, appctx.RoleViewer:
	default:
		return apperror.NewValidation("invalid role").WithDetail("role", string(u.Role))
	}

	return nil
}

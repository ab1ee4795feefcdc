package dto

import (
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/user"
)

// CreateUserRequest is the request body for creating a user. The plaintext
// password is hashed by the handler before the entity reaches the service.
type CreateUserRequest struct {
	OrgID    id.ID       `json:"orgId" binding:"required"`
	DeptID   id.ID       `json:"deptId" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	FullName string      `json:"fullName" binding:"required"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     appctx.Role `json:"role" binding:"required"`
}

// ToEntity converts DTO to domain entity. PasswordHash is set separately.
func (r *CreateUserRequest) ToEntity() *user.User {
	return &user.User{
		Base: entity.NewBase(),
		DeptScoped: entity.DeptScoped{
			TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
			DeptID:       r.DeptID,
		},
		Email:    r.Email,
		FullName: r.FullName,
		Role:     r.Role,
	}
}

// UpdateUserRequest is the request body for updating a user.
type UpdateUserRequest struct {
	FullName string      `json:"fullName" binding:"required"`
	Role     appctx.Role `json:"role" binding:"required"`
	Version  int         `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateUserRequest) ApplyTo(u *user.User) {
	u.FullName = r.FullName
	u.Role = r.Role
	u.Version = r.Version
}

// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"taskhive/internal/core/id"
)

// Role is a user role within a department.
type Role string

const (
	RoleHead       Role = "head"
	RoleDeputyHead Role = "deputy_head"
	RoleMember     Role = "member"
	RoleViewer     Role = "viewer"
)

// IsHeadOfDepartment reports whether the role is one of the two most
// senior roles. Only these may be named task watchers.
func (r Role) IsHeadOfDepartment() bool {
	return r == RoleHead || r == RoleDeputyHead
}

// UserContext contains authenticated user information.
type UserContext struct {
	UserID    id.ID
	OrgID     id.ID
	DeptID    id.ID
	Email     string
	Role      Role
	IsAdmin   bool
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or the nil ID.
func GetUserID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return id.Nil()
}

// GetOrgID returns the tenant organization ID from context or the nil ID.
func GetOrgID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.OrgID
	}
	return id.Nil()
}

// ActingUser returns a pointer to the acting user's ID for audit fields,
// or nil when the context is unauthenticated (system operations).
func ActingUser(ctx context.Context) *id.ID {
	if u := GetUser(ctx); u != nil {
		uid := u.UserID
		return &uid
	}
	return nil
}

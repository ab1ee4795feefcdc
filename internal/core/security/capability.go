// Package security provides authorization and access control.
package security

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
)

// Operation is a capability verb checked before invoking domain logic.
type Operation string

const (
	OpRead    Operation = "read"
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpRestore Operation = "restore"
)

// Resource names an entity type for capability checks.
type Resource string

const (
	ResourceOrganization Resource = "organization"
	ResourceDepartment   Resource = "department"
	ResourceUser         Resource = "user"
	ResourceTask         Resource = "task"
	ResourceActivity     Resource = "activity"
	ResourceComment      Resource = "comment"
	ResourceMaterial     Resource = "material"
	ResourceVendor       Resource = "vendor"
	ResourceNotification Resource = "notification"
	ResourceAttachment   Resource = "attachment"
)

// Scope bounds a capability check to a tenant (and optionally a department).
type Scope struct {
	OrgID  id.ID
	DeptID id.ID
}

// writableByMember lists resources members may create/update within their
// own department. Everything else requires a head-of-department role.
var writableByMember = map[Resource]struct{}{
	ResourceTask:       {},
	ResourceActivity:   {},
	ResourceComment:    {},
	ResourceAttachment: {},
}

// CanPerform is the capability check consulted by callers before invoking a
// cascade, restore, or write. The soft-delete core itself does not authorize;
// it only executes once authorized (the platform-org protection is the one
// exception, enforced inside the cascade).
func CanPerform(actor *appctx.UserContext, resource Resource, op Operation, scope Scope) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin {
		return true
	}

	// Tenant boundary: non-admins never cross organizations.
	if !id.IsNil(scope.OrgID) && actor.OrgID != scope.OrgID {
		return false
	}

	switch op {
	case OpRead:
		return true

	case OpCreate, OpUpdate:
		if actor.Role.IsHeadOfDepartment() {
			return true
		}
		if actor.Role == appctx.RoleMember {
			if _, ok := writableByMember[resource]; ok {
				return scopeMatchesDept(actor, scope)
			}
		}
		return false

	case OpDelete, OpRestore:
		// Destructive lifecycle operations are HOD-only, and organizations
		// can only be deleted by platform admins.
		if resource == ResourceOrganization {
			return false
		}
		return actor.Role.IsHeadOfDepartment()
	}

	return false
}

func scopeMatchesDept(actor *appctx.UserContext, scope Scope) bool {
	return id.IsNil(scope.DeptID) || actor.DeptID == scope.DeptID
}

// Require returns a FORBIDDEN error when the acting user in ctx lacks the
// capability. Handlers call this before touching services.
func Require(ctx context.Context, resource Resource, op Operation, scope Scope) error {
	if CanPerform(appctx.GetUser(ctx), resource, op, scope) {
		return nil
	}
	return apperror.NewForbidden("insufficient permissions").
		WithDetail("resource", string(resource)).
		WithDetail("operation", string(op))
}

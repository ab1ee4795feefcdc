package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
)

func TestCanPerform(t *testing.T) {
	orgA := id.New()
	orgB := id.New()
	dept := id.New()

	admin := &appctx.UserContext{UserID: id.New(), OrgID: orgA, IsAdmin: true}
	head := &appctx.UserContext{UserID: id.New(), OrgID: orgA, DeptID: dept, Role: appctx.RoleHead}
	member := &appctx.UserContext{UserID: id.New(), OrgID: orgA, DeptID: dept, Role: appctx.RoleMember}
	viewer := &appctx.UserContext{UserID: id.New(), OrgID: orgA, DeptID: dept, Role: appctx.RoleViewer}

	tests := []struct {
		name     string
		actor    *appctx.UserContext
		resource Resource
		op       Operation
		scope    Scope
		want     bool
	}{
		{"nil actor", nil, ResourceTask, OpRead, Scope{}, false},
		{"admin anything", admin, ResourceOrganization, OpDelete, Scope{OrgID: orgB}, true},
		{"cross-org blocked", head, ResourceTask, OpRead, Scope{OrgID: orgB}, false},
		{"viewer reads", viewer, ResourceTask, OpRead, Scope{OrgID: orgA}, true},
		{"viewer cannot create", viewer, ResourceTask, OpCreate, Scope{OrgID: orgA}, false},
		{"member creates task in own dept", member, ResourceTask, OpCreate, Scope{OrgID: orgA, DeptID: dept}, true},
		{"member cannot create material", member, ResourceMaterial, OpCreate, Scope{OrgID: orgA}, false},
		{"member cannot delete", member, ResourceTask, OpDelete, Scope{OrgID: orgA, DeptID: dept}, false},
		{"head deletes task", head, ResourceTask, OpDelete, Scope{OrgID: orgA, DeptID: dept}, true},
		{"head restores vendor", head, ResourceVendor, OpRestore, Scope{OrgID: orgA}, true},
		{"head cannot delete org", head, ResourceOrganization, OpDelete, Scope{OrgID: orgA}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.actor, tt.resource, tt.op, tt.scope))
		})
	}
}

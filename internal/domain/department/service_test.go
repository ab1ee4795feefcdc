package department_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/domaintest"
	"taskhive/internal/domain/task"
)

// End-to-end scenario: org O, dept D under O, user U in D, assigned task
// T created by U; cascade-delete D; O stays live, D/U/T tombstoned, T
// invisible without WithDeleted.
func TestDepartmentCascadeEndToEnd(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))

	assert.False(t, org.Deleted())
	for _, e := range []interface{ Deleted() bool }{d, u, tk} {
		assert.True(t, e.Deleted())
	}
	assert.NotNil(t, d.DeletedAt)
	assert.NotNil(t, u.DeletedAt)
	assert.NotNil(t, tk.DeletedAt)

	// Filter transparency on the task.
	live, err := f.Tasks.IDsWhere(ctx, domain.Where{"dept_id": d.ID}, domain.ActiveOnly, 0, id.Nil())
	require.NoError(t, err)
	assert.Empty(t, live)

	dead, err := f.Tasks.IDsWhere(ctx, domain.Where{"dept_id": d.ID}, domain.WithDeleted, 0, id.Nil())
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, tk.ID, dead[0])
}

func TestDepartmentCascadeSweepsScopedRecords(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleHead)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)
	act := f.SeedActivity(tk, u.ID)
	c := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)
	m := f.SeedMaterial(d, "cement", "12.50")
	n := f.SeedNotification(org.ID, d.ID, "task", tk.ID, u.ID)
	att := f.SeedAttachment(org.ID, d.ID, "task", tk.ID, u.ID)

	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))

	for _, e := range []interface{ Deleted() bool }{d, u, tk, act, c, m, n, att} {
		assert.True(t, e.Deleted())
	}
}

// Restore-parent gate: a child may not be restored while its parent is
// tombstoned; restoring the parent first makes the child restorable.
func TestRestoreParentGate(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)

	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))
	require.True(t, u.Deleted())

	// Re-tombstone state: restore the user alone while the department is
	// still dead.
	err := f.UserSvc.RestoreCascade(ctx, u.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))
	assert.True(t, u.Deleted())

	// Restoring the department restores the whole subtree.
	require.NoError(t, f.DeptSvc.RestoreCascade(ctx, d.ID))
	assert.False(t, d.Deleted())
	assert.False(t, u.Deleted())

	// And the gate passes for an individually re-deleted child.
	require.NoError(t, f.UserSvc.SoftDeleteCascade(ctx, u.ID))
	require.NoError(t, f.UserSvc.RestoreCascade(ctx, u.ID))
	assert.False(t, u.Deleted())
}

// A record deliberately removed on its own does not ride back in on its
// parent's restore: the cascade only brings back what it tombstoned
// itself, selected by the shared deletion timestamp.
func TestDepartmentRestoreSkipsIndependentlyDeletedUser(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	removed := f.SeedUser(d, "gone@acme.test", appctx.RoleMember)
	kept := f.SeedUser(d, "kept@acme.test", appctx.RoleMember)

	require.NoError(t, f.UserSvc.SoftDeleteCascade(ctx, removed.ID))
	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))
	require.NoError(t, f.DeptSvc.RestoreCascade(ctx, d.ID))

	assert.False(t, d.Deleted())
	assert.False(t, kept.Deleted())
	assert.True(t, removed.Deleted(),
		"user deleted before the department cascade must stay tombstoned")
}

// Everything tombstoned by one cascade carries the same deleted_at; that
// is what lets the restore scope select exactly the cascade's victims.
func TestDepartmentCascadeSharesDeleteStamp(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))

	require.NotNil(t, d.DeletedAt)
	require.NotNil(t, u.DeletedAt)
	require.NotNil(t, tk.DeletedAt)
	assert.Equal(t, *d.DeletedAt, *u.DeletedAt)
	assert.Equal(t, *d.DeletedAt, *tk.DeletedAt)
}

func TestDepartmentRestoreRequiresLiveOrganization(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")

	require.NoError(t, f.OrgSvc.SoftDeleteCascade(ctx, org.ID))

	err := f.DeptSvc.RestoreCascade(ctx, d.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))
	assert.True(t, d.Deleted())
}

func TestDepartmentDoubleDelete(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")

	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))

	// Instance-level double delete surfaces NOT_FOUND through the live
	// read; the tombstone fields stay consistent.
	err := f.DeptSvc.SoftDeleteCascade(ctx, d.ID)
	require.Error(t, err)
	assert.True(t, d.Deleted())
	assert.NotNil(t, d.DeletedAt)
}

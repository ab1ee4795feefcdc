package organization_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/domain/domaintest"
	"taskhive/internal/domain/task"
)

func TestOrganizationCascadeDelete(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	other := f.SeedOrg("other", false)

	d1 := f.SeedDept(org, "eng")
	d2 := f.SeedDept(org, "ops")
	u1 := f.SeedUser(d1, "a@acme.test", appctx.RoleHead)
	u2 := f.SeedUser(d1, "b@acme.test", appctx.RoleMember)
	u3 := f.SeedUser(d2, "c@acme.test", appctx.RoleMember)
	t1 := f.SeedTask(d1, task.KindAssigned, u1.ID)
	v := f.SeedVendor(org, "paints")

	otherDept := f.SeedDept(other, "eng")
	otherUser := f.SeedUser(otherDept, "x@other.test", appctx.RoleMember)

	require.NoError(t, f.OrgSvc.SoftDeleteCascade(ctx, org.ID))

	// Everything under the organization is tombstoned.
	for _, e := range []interface{ Deleted() bool }{org, d1, d2, u1, u2, u3, t1, v} {
		assert.True(t, e.Deleted())
	}

	// The sibling tenant is untouched.
	assert.False(t, other.Deleted())
	assert.False(t, otherDept.Deleted())
	assert.False(t, otherUser.Deleted())

	// Children are fully tombstoned before the organization itself.
	orgIdx := f.Log.Index(fmt.Sprintf("softdelete organization %s", org.ID))
	require.GreaterOrEqual(t, orgIdx, 0)
	for _, entry := range []string{
		fmt.Sprintf("softdelete department %s", d1.ID),
		fmt.Sprintf("softdelete department %s", d2.ID),
		fmt.Sprintf("softdelete task %s", t1.ID),
	} {
		idx := f.Log.Index(entry)
		require.GreaterOrEqual(t, idx, 0, entry)
		assert.Less(t, idx, orgIdx, "%s must precede the organization tombstone", entry)
	}
}

func TestOrganizationCascadeDeleteRequiresTransaction(t *testing.T) {
	f := domaintest.NewFixture()
	org := f.SeedOrg("acme", false)

	f.Txc.Open = false
	err := f.OrgSvc.SoftDeleteCascade(context.Background(), org.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeTransactionRequired))
	assert.False(t, org.Deleted())
}

func TestPlatformOrganizationIsProtected(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	platform := f.SeedOrg("platform", true)
	d := f.SeedDept(platform, "hq")

	err := f.OrgSvc.SoftDeleteCascade(ctx, platform.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeProtectedEntity))

	// Refused before touching anything.
	assert.False(t, platform.Deleted())
	assert.False(t, d.Deleted())
	assert.Empty(t, f.Log.Entries)
}

func TestOrganizationCascadeAbortsOnChildFailure(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	f.SeedUser(d, "a@acme.test", appctx.RoleMember)

	boom := errors.New("storage failure")
	f.Users.FailOn["softdelete_where"] = boom

	err := f.OrgSvc.SoftDeleteCascade(ctx, org.ID)
	require.ErrorIs(t, err, boom)

	// The walk stopped before the parent tombstones; the surrounding
	// transaction rolls back whatever the earlier steps touched.
	assert.False(t, org.Deleted())
	assert.Equal(t, -1, f.Log.Index(fmt.Sprintf("softdelete organization %s", org.ID)))
	assert.Equal(t, -1, f.Log.Index(fmt.Sprintf("softdelete department %s", d.ID)))
}

func TestOrganizationRestoreCascade(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "a@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	require.NoError(t, f.OrgSvc.SoftDeleteCascade(ctx, org.ID))
	require.True(t, tk.Deleted())

	require.NoError(t, f.OrgSvc.RestoreCascade(ctx, org.ID))

	for _, e := range []interface{ Deleted() bool }{org, d, u, tk} {
		assert.False(t, e.Deleted())
	}
	assert.Equal(t, 1, org.RestoreCount)
}

func TestCascadeRegistryDispatch(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "a@acme.test", appctx.RoleMember)

	require.NoError(t, f.Registry.SoftDelete(ctx, "user", u.ID))
	assert.True(t, u.Deleted())

	require.NoError(t, f.Registry.Restore(ctx, "user", u.ID))
	assert.False(t, u.Deleted())

	err := f.Registry.SoftDelete(ctx, "widget", u.ID)
	require.Error(t, err)
}

package material_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/domaintest"
	"taskhive/internal/domain/task"
)

// Deleting a material strips its line items from referencing hosts and
// journals them; restoring the material puts them back.
func TestMaterialDeleteStripsLineItems(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)

	cement := f.SeedMaterial(d, "cement", "12.50")
	sand := f.SeedMaterial(d, "sand", "3.00")

	tk := f.SeedTask(d, task.KindRoutine, u.ID)
	tk.Materials = append(tk.Materials,
		domaintest.UsageOf(cement, "4"), // 50.00
		domaintest.UsageOf(sand, "10"),  // 30.00
	)
	tk.RecomputeTotal()

	act := f.SeedActivity(tk, u.ID)
	act.Materials = append(act.Materials, domaintest.UsageOf(cement, "2")) // 25.00
	act.RecomputeTotal()

	require.NoError(t, f.MaterialSvc.SoftDeleteCascade(ctx, cement.ID))
	assert.True(t, cement.Deleted())

	// Line items for the deleted material are gone; other items stay and
	// totals follow.
	assert.Len(t, tk.Materials, 1)
	assert.Equal(t, sand.ID, tk.Materials[0].MaterialID)
	assert.True(t, tk.TotalMaterialCost.Equal(types.MustMoney("30")))
	assert.Empty(t, act.Materials)
	assert.True(t, act.TotalMaterialCost.IsZero())

	// Each removal is journaled.
	require.Len(t, f.Journal.Entries, 2)
	for _, e := range f.Journal.Entries {
		assert.Equal(t, cement.ID, e.MaterialID)
		assert.Nil(t, e.ReinsertedAt)
	}
}

func TestMaterialRestoreReinsertsLineItems(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)

	cement := f.SeedMaterial(d, "cement", "12.50")
	tk := f.SeedTask(d, task.KindRoutine, u.ID)
	tk.Materials = append(tk.Materials, domaintest.UsageOf(cement, "4"))
	tk.RecomputeTotal()

	require.NoError(t, f.MaterialSvc.SoftDeleteCascade(ctx, cement.ID))
	require.Empty(t, tk.Materials)

	require.NoError(t, f.MaterialSvc.RestoreCascade(ctx, cement.ID))
	assert.False(t, cement.Deleted())

	require.Len(t, tk.Materials, 1)
	assert.Equal(t, cement.ID, tk.Materials[0].MaterialID)
	assert.True(t, tk.TotalMaterialCost.Equal(types.MustMoney("50")))

	// The journal entry is closed.
	require.Len(t, f.Journal.Entries, 1)
	assert.NotNil(t, f.Journal.Entries[0].ReinsertedAt)
}

// A host tombstoned between the delete and the restore is skipped: its
// journal entry stays open and its line items are not resurrected.
func TestMaterialRestoreSkipsDeadHosts(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)

	cement := f.SeedMaterial(d, "cement", "12.50")
	tk := f.SeedTask(d, task.KindRoutine, u.ID)
	tk.Materials = append(tk.Materials, domaintest.UsageOf(cement, "4"))
	tk.RecomputeTotal()

	require.NoError(t, f.MaterialSvc.SoftDeleteCascade(ctx, cement.ID))
	require.NoError(t, f.TaskSvc.SoftDeleteCascade(ctx, tk.ID))

	require.NoError(t, f.MaterialSvc.RestoreCascade(ctx, cement.ID))

	assert.False(t, cement.Deleted())
	assert.Empty(t, tk.Materials)
	require.Len(t, f.Journal.Entries, 1)
	assert.Nil(t, f.Journal.Entries[0].ReinsertedAt)
}

func TestMaterialDeleteWithoutReferencesIsPlain(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	m := f.SeedMaterial(d, "cement", "12.50")

	require.NoError(t, f.MaterialSvc.SoftDeleteCascade(ctx, m.ID))
	assert.True(t, m.Deleted())
	assert.Empty(t, f.Journal.Entries)

	// Second delete of the same tombstone.
	err := f.MaterialSvc.SoftDeleteCascade(ctx, m.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeAlreadyDeleted))
}

func TestMaterialRestoreRequiresLiveDepartment(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	m := f.SeedMaterial(d, "cement", "12.50")

	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))

	err := f.MaterialSvc.RestoreCascade(ctx, m.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))
	assert.True(t, m.Deleted())
}

func TestMaterialCascadeRequiresTransaction(t *testing.T) {
	f := domaintest.NewFixture()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	m := f.SeedMaterial(d, "cement", "12.50")

	f.Txc.Open = false
	err := f.MaterialSvc.SoftDeleteCascade(context.Background(), m.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeTransactionRequired))
	assert.False(t, m.Deleted())
}

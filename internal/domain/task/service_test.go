package task_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/domaintest"
	"taskhive/internal/domain/task"
)

func TestTaskCascadeDelete(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)

	tk := f.SeedTask(d, task.KindAssigned, u.ID)
	act := f.SeedActivity(tk, u.ID)
	actComment := f.SeedComment(org.ID, d.ID, "activity", act.ID, u.ID)
	taskComment := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)
	att := f.SeedAttachment(org.ID, d.ID, "task", tk.ID, u.ID)
	n := f.SeedNotification(org.ID, d.ID, "task", tk.ID, u.ID)

	// A sibling task's subtree must not be touched.
	other := f.SeedTask(d, task.KindAssigned, u.ID)
	otherAct := f.SeedActivity(other, u.ID)

	require.NoError(t, f.TaskSvc.SoftDeleteCascade(ctx, tk.ID))

	for _, e := range []interface{ Deleted() bool }{tk, act, actComment, taskComment, att, n} {
		assert.True(t, e.Deleted())
	}
	assert.False(t, other.Deleted())
	assert.False(t, otherAct.Deleted())

	// Depth-first ordering: the activity's comment before the activity,
	// the activity and the task's comment before the task.
	taskIdx := f.Log.Index(fmt.Sprintf("softdelete task %s", tk.ID))
	actIdx := f.Log.Index(fmt.Sprintf("softdelete activity %s", act.ID))
	require.GreaterOrEqual(t, taskIdx, 0)
	require.GreaterOrEqual(t, actIdx, 0)
	assert.Less(t, f.Log.Index(fmt.Sprintf("softdelete comment %s", actComment.ID)), actIdx)
	assert.Less(t, actIdx, taskIdx)
	assert.Less(t, f.Log.Index(fmt.Sprintf("softdelete comment %s", taskComment.ID)), taskIdx)
}

func TestTaskCascadeRequiresTransaction(t *testing.T) {
	f := domaintest.NewFixture()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	f.Txc.Open = false
	err := f.TaskSvc.SoftDeleteCascade(context.Background(), tk.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeTransactionRequired))
	assert.False(t, tk.Deleted())
}

func TestTaskRestoreCascade(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)
	act := f.SeedActivity(tk, u.ID)
	c := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)
	n := f.SeedNotification(org.ID, d.ID, "task", tk.ID, u.ID)

	require.NoError(t, f.TaskSvc.SoftDeleteCascade(ctx, tk.ID))
	require.NoError(t, f.TaskSvc.RestoreCascade(ctx, tk.ID))

	for _, e := range []interface{ Deleted() bool }{tk, act, c, n} {
		assert.False(t, e.Deleted())
	}
	assert.Equal(t, 1, tk.RestoreCount)
	assert.Nil(t, tk.DeletedAt)
	assert.NotNil(t, tk.RestoredAt)
}

// A comment removed from the thread before the task itself was deleted
// must not come back when the task does.
func TestTaskRestoreSkipsPreviouslyDeletedComment(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)
	removed := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)
	kept := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)

	require.NoError(t, f.CommentSvc.SoftDeleteCascade(ctx, removed.ID))
	require.NoError(t, f.TaskSvc.SoftDeleteCascade(ctx, tk.ID))
	require.NoError(t, f.TaskSvc.RestoreCascade(ctx, tk.ID))

	assert.False(t, tk.Deleted())
	assert.False(t, kept.Deleted())
	assert.True(t, removed.Deleted(),
		"comment deleted before the task cascade must stay tombstoned")
}

func TestTaskUpdateAfterDeleteReportsAlreadyDeleted(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	require.NoError(t, f.TaskSvc.SoftDeleteCascade(ctx, tk.ID))

	tk.Title = "renamed"
	err := f.TaskSvc.Update(ctx, tk)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeAlreadyDeleted))
}

func TestTaskRestoreRequiresLiveDepartment(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	require.NoError(t, f.DeptSvc.SoftDeleteCascade(ctx, d.ID))

	err := f.TaskSvc.RestoreCascade(ctx, tk.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))
	assert.True(t, tk.Deleted())
}

func TestTaskCreateValidatesReferences(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	other := f.SeedOrg("other", false)
	d := f.SeedDept(org, "eng")
	head := f.SeedUser(d, "head@acme.test", appctx.RoleHead)
	member := f.SeedUser(d, "m@acme.test", appctx.RoleMember)
	foreignDept := f.SeedDept(other, "eng")
	foreignUser := f.SeedUser(foreignDept, "x@other.test", appctx.RoleMember)

	mk := func() *task.Task {
		tk := f.SeedTask(d, task.KindAssigned, member.ID)
		delete(f.Tasks.Items, tk.ID)
		return tk
	}

	tk := mk()
	tk.Assignees = append(tk.Assignees, foreignUser.ID)
	err := f.TaskSvc.Create(ctx, tk)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))

	// Watchers must be heads of department.
	tk = mk()
	tk.Watchers = append(tk.Watchers, member.ID)
	err = f.TaskSvc.Create(ctx, tk)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))

	tk = mk()
	tk.Assignees = append(tk.Assignees, member.ID)
	tk.Watchers = append(tk.Watchers, head.ID)
	require.NoError(t, f.TaskSvc.Create(ctx, tk))
}

func TestRoutineTaskTotalsFollowLineItems(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	m := f.SeedMaterial(d, "cement", "12.50")

	tk := f.SeedTask(d, task.KindRoutine, u.ID)
	delete(f.Tasks.Items, tk.ID)
	tk.Materials = append(tk.Materials, domaintest.UsageOf(m, "4"))

	require.NoError(t, f.TaskSvc.Create(ctx, tk))
	assert.True(t, tk.TotalMaterialCost.Equal(types.MustMoney("50")))
}

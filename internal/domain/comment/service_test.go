package comment_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/comment"
	"taskhive/internal/domain/domaintest"
	"taskhive/internal/domain/task"
)

// Deleting a comment tombstones its reply thread depth-first, deepest
// replies first.
func TestCommentThreadCascade(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	root := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)
	reply := f.SeedComment(org.ID, d.ID, "comment", root.ID, u.ID)
	nested := f.SeedComment(org.ID, d.ID, "comment", reply.ID, u.ID)
	att := f.SeedAttachment(org.ID, d.ID, "comment", reply.ID, u.ID)

	sibling := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)

	require.NoError(t, f.CommentSvc.SoftDeleteCascade(ctx, root.ID))

	for _, e := range []interface{ Deleted() bool }{root, reply, nested, att} {
		assert.True(t, e.Deleted())
	}
	assert.False(t, sibling.Deleted())

	rootIdx := f.Log.Index(fmt.Sprintf("softdelete comment %s", root.ID))
	replyIdx := f.Log.Index(fmt.Sprintf("softdelete comment %s", reply.ID))
	nestedIdx := f.Log.Index(fmt.Sprintf("softdelete comment %s", nested.ID))
	assert.Less(t, nestedIdx, replyIdx)
	assert.Less(t, replyIdx, rootIdx)
}

func TestCommentRestoreCascade(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	root := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)
	reply := f.SeedComment(org.ID, d.ID, "comment", root.ID, u.ID)

	require.NoError(t, f.CommentSvc.SoftDeleteCascade(ctx, root.ID))
	require.NoError(t, f.CommentSvc.RestoreCascade(ctx, root.ID))

	assert.False(t, root.Deleted())
	assert.False(t, reply.Deleted())
}

// A comment may not be restored while its parent is tombstoned.
func TestCommentRestoreRequiresLiveParent(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)
	c := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID)

	require.NoError(t, f.TaskSvc.SoftDeleteCascade(ctx, tk.ID))

	err := f.CommentSvc.RestoreCascade(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))
	assert.True(t, c.Deleted())

	// Restoring the task restores the comment with it.
	require.NoError(t, f.TaskSvc.RestoreCascade(ctx, tk.ID))
	assert.False(t, c.Deleted())
}

func newReply(org, dept id.ID, author id.ID, parentType string, parentID id.ID) *comment.Comment {
	c := &comment.Comment{
		Base:       entity.NewBase(),
		AuthorID:   author,
		Body:       "reply",
		ParentType: parentType,
		ParentID:   parentID,
	}
	c.OrgID = org
	c.DeptID = dept
	return c
}

func TestCommentCreateEnforcesThreadDepth(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	// Build a chain at the maximum depth through the service.
	parent := f.SeedComment(org.ID, d.ID, "task", tk.ID, u.ID) // depth 1
	for i := 2; i <= 5; i++ {
		c := newReply(org.ID, d.ID, u.ID, "comment", parent.ID)
		require.NoError(t, f.CommentSvc.Create(ctx, c), "depth %d", i)
		parent = c
	}

	// One more reply would exceed the limit.
	over := newReply(org.ID, d.ID, u.ID, "comment", parent.ID)
	err := f.CommentSvc.Create(ctx, over)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))
}

func TestCommentCreateRejectsDeadParent(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	require.NoError(t, f.TaskSvc.SoftDeleteCascade(ctx, tk.ID))

	c := newReply(org.ID, d.ID, u.ID, "task", tk.ID)
	err := f.CommentSvc.Create(ctx, c)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))
}

func TestCommentCreateValidatesMentions(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	other := f.SeedOrg("other", false)
	d := f.SeedDept(org, "eng")
	u := f.SeedUser(d, "u@acme.test", appctx.RoleMember)
	foreignDept := f.SeedDept(other, "eng")
	foreign := f.SeedUser(foreignDept, "x@other.test", appctx.RoleMember)
	tk := f.SeedTask(d, task.KindAssigned, u.ID)

	c := newReply(org.ID, d.ID, u.ID, "task", tk.ID)
	c.Mentions = append(c.Mentions, foreign.ID)
	err := f.CommentSvc.Create(ctx, c)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeReferentialIntegrity))

	c = newReply(org.ID, d.ID, u.ID, "task", tk.ID)
	c.Mentions = append(c.Mentions, u.ID)
	require.NoError(t, f.CommentSvc.Create(ctx, c))
}

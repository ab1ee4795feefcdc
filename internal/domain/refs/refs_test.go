package refs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
)

func staticProber(refs map[id.ID]*Ref) Prober {
	return func(ctx context.Context, entityID id.ID) (*Ref, error) {
		return refs[entityID], nil
	}
}

func staticUserProber(users map[id.ID]*UserRef) UserProber {
	return func(ctx context.Context, userID id.ID) (*UserRef, error) {
		return users[userID], nil
	}
}

func requireRefError(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReferentialIntegrity, appErr.Code)
	return appErr
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	taskID := id.New()

	r := NewResolver()
	r.Register("task", staticProber(map[id.ID]*Ref{taskID: {OrgID: orgID}}))

	t.Run("resolves live reference", func(t *testing.T) {
		ref, err := r.Resolve(ctx, "parentId", "task", taskID)
		require.NoError(t, err)
		assert.Equal(t, orgID, ref.OrgID)
	})

	t.Run("unknown discriminator", func(t *testing.T) {
		_, err := r.Resolve(ctx, "parentId", "widget", taskID)
		appErr := requireRefError(t, err)
		assert.Equal(t, "widget", appErr.Details["discriminator"])
	})

	t.Run("dead reference", func(t *testing.T) {
		_, err := r.Resolve(ctx, "parentId", "task", id.New())
		requireRefError(t, err)
	})
}

func TestValidateDeptInOrg(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	otherOrg := id.New()
	deptID := id.New()

	probe := staticProber(map[id.ID]*Ref{deptID: {OrgID: orgID, DeptID: deptID}})

	assert.NoError(t, ValidateDeptInOrg(ctx, probe, deptID, orgID))
	requireRefError(t, ValidateDeptInOrg(ctx, probe, deptID, otherOrg))
	requireRefError(t, ValidateDeptInOrg(ctx, probe, id.New(), orgID))
}

func TestValidateActor(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	deptID := id.New()
	userID := id.New()

	probe := staticUserProber(map[id.ID]*UserRef{
		userID: {OrgID: orgID, DeptID: deptID, Role: appctx.RoleMember},
	})

	assert.NoError(t, ValidateActor(ctx, probe, "createdBy", userID, orgID, deptID))

	t.Run("wrong department", func(t *testing.T) {
		err := ValidateActor(ctx, probe, "createdBy", userID, orgID, id.New())
		requireRefError(t, err)
	})

	t.Run("dept not checked when nil", func(t *testing.T) {
		assert.NoError(t, ValidateActor(ctx, probe, "createdBy", userID, orgID, id.Nil()))
	})

	t.Run("wrong org", func(t *testing.T) {
		requireRefError(t, ValidateActor(ctx, probe, "createdBy", userID, id.New(), deptID))
	})
}

func TestValidateUserList(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	deptID := id.New()

	head := id.New()
	member := id.New()

	probe := staticUserProber(map[id.ID]*UserRef{
		head:   {OrgID: orgID, DeptID: deptID, Role: appctx.RoleHead},
		member: {OrgID: orgID, DeptID: deptID, Role: appctx.RoleMember},
	})

	opts := ListOptions{Field: "assignees", OrgID: orgID, MaxSize: MaxAssignees}

	t.Run("valid list", func(t *testing.T) {
		assert.NoError(t, ValidateUserList(ctx, probe, []id.ID{head, member}, opts))
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		requireRefError(t, ValidateUserList(ctx, probe, []id.ID{member, member}, opts))
	})

	t.Run("cardinality", func(t *testing.T) {
		small := opts
		small.MaxSize = 1
		requireRefError(t, ValidateUserList(ctx, probe, []id.ID{head, member}, small))
	})

	t.Run("dead member", func(t *testing.T) {
		requireRefError(t, ValidateUserList(ctx, probe, []id.ID{id.New()}, opts))
	})

	t.Run("watchers must be HOD", func(t *testing.T) {
		hodOpts := ListOptions{Field: "watchers", OrgID: orgID, MaxSize: MaxWatchers, HODOnly: true}
		assert.NoError(t, ValidateUserList(ctx, probe, []id.ID{head}, hodOpts))
		requireRefError(t, ValidateUserList(ctx, probe, []id.ID{member}, hodOpts))
	})
}

func TestValidateParent(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	activityID := id.New()

	r := NewResolver()
	r.Register("activity", staticProber(map[id.ID]*Ref{activityID: {OrgID: orgID}}))

	allowed := []string{"task", "activity", "comment"}

	t.Run("resolves allowed parent", func(t *testing.T) {
		ref, err := ValidateParent(ctx, r, "parentId", "activity", activityID, orgID, allowed)
		require.NoError(t, err)
		assert.Equal(t, orgID, ref.OrgID)
	})

	t.Run("disallowed type", func(t *testing.T) {
		_, err := ValidateParent(ctx, r, "parentId", "vendor", activityID, orgID, allowed)
		requireRefError(t, err)
	})

	t.Run("cross-org parent", func(t *testing.T) {
		_, err := ValidateParent(ctx, r, "parentId", "activity", activityID, id.New(), allowed)
		requireRefError(t, err)
	})
}

func TestValidateThread(t *testing.T) {
	ctx := context.Background()

	// root(task) <- c1 <- c2 <- c3
	c1, c2, c3 := id.New(), id.New(), id.New()
	taskID := id.New()

	nodes := map[id.ID]*ThreadNode{
		c1: {ID: c1, ParentType: "task", ParentID: taskID},
		c2: {ID: c2, ParentType: "comment", ParentID: c1},
		c3: {ID: c3, ParentType: "comment", ParentID: c2},
	}
	fetch := func(ctx context.Context, commentID id.ID) (*ThreadNode, error) {
		return nodes[commentID], nil
	}

	t.Run("within depth", func(t *testing.T) {
		assert.NoError(t, ValidateThread(ctx, fetch, c3))
	})

	t.Run("depth exceeded", func(t *testing.T) {
		// c4 and c5 extend the thread to five levels; a reply under c5
		// would land at depth six.
		c4, c5 := id.New(), id.New()
		nodes[c4] = &ThreadNode{ID: c4, ParentType: "comment", ParentID: c3}
		nodes[c5] = &ThreadNode{ID: c5, ParentType: "comment", ParentID: c4}

		assert.NoError(t, ValidateThread(ctx, fetch, c4))
		requireRefError(t, ValidateThread(ctx, fetch, c5))

		delete(nodes, c4)
		delete(nodes, c5)
	})

	t.Run("cycle detected", func(t *testing.T) {
		a, b := id.New(), id.New()
		nodes[a] = &ThreadNode{ID: a, ParentType: "comment", ParentID: b}
		nodes[b] = &ThreadNode{ID: b, ParentType: "comment", ParentID: a}
		err := ValidateThread(ctx, fetch, a)
		requireRefError(t, err)
	})

	t.Run("dead parent", func(t *testing.T) {
		requireRefError(t, ValidateThread(ctx, fetch, id.New()))
	})
}

package soft_repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/filter"
)

type testTask struct {
	entity.Base
	entity.DeptScoped
	Title  string `db:"title" json:"title"`
	Status string `db:"status" json:"status"`
}

func (t *testTask) Validate(ctx context.Context) error { return nil }

func newTestRepo() *Repo[*testTask] {
	return NewRepo[*testTask](nil, "tasks", "task", []string{"title"}, func() *testTask {
		return &testTask{}
	})
}

func TestApplyVisibility(t *testing.T) {
	r := newTestRepo()

	tests := []struct {
		name       string
		vis        domain.Visibility
		wantFilter bool
		wantValue  string
	}{
		{"default excludes tombstoned", domain.ActiveOnly, true, "false"},
		{"with deleted adds nothing", domain.WithDeleted, false, ""},
		{"deleted only", domain.DeletedOnly, true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := applyVisibility(r.baseSelect(), tt.vis)
			sql, args, err := q.ToSql()
			require.NoError(t, err)

			if tt.wantFilter {
				assert.Contains(t, sql, "is_deleted = $1")
				require.Len(t, args, 1)
				assert.Equal(t, tt.wantValue == "true", args[0])
			} else {
				assert.NotContains(t, sql, "is_deleted")
				assert.Empty(t, args)
			}
		})
	}
}

func TestFilteredSelect_ExplicitTombstoneConditionWins(t *testing.T) {
	r := newTestRepo()

	f := domain.ListFilter{
		Visibility: domain.ActiveOnly,
		Conditions: []filter.Item{
			{Field: "is_deleted", Operator: filter.Equal, Value: true},
		},
	}

	q, err := r.filteredSelect(f)
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	// Exactly one is_deleted predicate: the caller's, not the implicit one.
	assert.Equal(t, 1, strings.Count(sql, "is_deleted"))
	require.Len(t, args, 1)
	assert.Equal(t, true, args[0])
}

func TestFilteredSelect_TenantAndDeptScope(t *testing.T) {
	r := newTestRepo()

	orgID := id.New()
	deptID := id.New()

	q, err := r.filteredSelect(domain.ListFilter{OrgID: orgID, DeptID: deptID})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "org_id =")
	assert.Contains(t, sql, "dept_id =")
	assert.Contains(t, sql, "is_deleted =")
	assert.Len(t, args, 3)
}

func TestFilteredSelect_Search(t *testing.T) {
	r := newTestRepo()

	q, err := r.filteredSelect(domain.ListFilter{Search: "quarterly"})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "title ILIKE")
	assert.Contains(t, args, "%quarterly%")
}

func TestApplyConditions_RejectsUnknownColumn(t *testing.T) {
	r := newTestRepo()

	_, err := r.applyConditions(r.baseSelect(), []filter.Item{
		{Field: "title; DROP TABLE tasks", Operator: filter.Equal, Value: "x"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter column")
}

func TestApplyConditions_Operators(t *testing.T) {
	r := newTestRepo()

	q, err := r.applyConditions(r.baseSelect(), []filter.Item{
		{Field: "status", Operator: filter.InList, Value: []string{"open", "done"}},
		{Field: "deleted_at", Operator: filter.IsNull},
		{Field: "title", Operator: filter.Contains, Value: "report"},
	})
	require.NoError(t, err)

	sql, _, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "status IN")
	assert.Contains(t, sql, "deleted_at IS NULL")
	assert.Contains(t, sql, "title ILIKE")
}

func TestParseOrderBy(t *testing.T) {
	r := newTestRepo()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "created_at DESC", false},
		{"title", "title ASC", false},
		{"-updated_at", "updated_at DESC", false},
		{"+status", "status ASC", false},
		{"no_such_column", "", true},
		{"-", "", true},
	}

	for _, tt := range tests {
		got, err := r.parseOrderBy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "orderBy %q", tt.in)
			continue
		}
		require.NoError(t, err, "orderBy %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDeleteAlwaysBlocked(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	err := r.Delete(ctx, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsHardDeleteBlocked(err))

	err = r.DeleteWhere(ctx, domain.Where{"dept_id": id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsHardDeleteBlocked(err))
}

func TestCreateRejectsPreTombstonedEntity(t *testing.T) {
	r := newTestRepo()

	now := time.Now().UTC()
	e := &testTask{Title: "smuggled"}
	e.Base = entity.NewBase()
	e.IsDeleted = true
	e.DeletedAt = &now

	err := r.Create(context.Background(), e)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeSoftDeleteValidation))
}

// Every tombstone bookkeeping column is guarded on insert, not just the
// flag and the timestamp.
func TestCreateRejectsAnyPresetTombstoneField(t *testing.T) {
	r := newTestRepo()
	now := time.Now().UTC()
	by := id.New()

	tests := []struct {
		col string
		mut func(*testTask)
	}{
		{"deleted_by", func(e *testTask) { e.DeletedBy = &by }},
		{"restored_at", func(e *testTask) { e.RestoredAt = &now }},
		{"restored_by", func(e *testTask) { e.RestoredBy = &by }},
		{"restore_count", func(e *testTask) { e.RestoreCount = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			e := &testTask{Title: "smuggled"}
			e.Base = entity.NewBase()
			tt.mut(e)

			err := r.Create(context.Background(), e)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeSoftDeleteValidation))
		})
	}
}

func TestWhereSqlizerLowerBound(t *testing.T) {
	deptID := id.New()
	cutoff := time.Now().UTC()

	sql, args, err := squirrel.Select("id").From("tasks").
		Where(whereSqlizer(domain.Where{
			"dept_id":    deptID,
			"deleted_at": domain.AtOrAfter{Value: cutoff},
		})).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "deleted_at >=")
	assert.Contains(t, sql, "dept_id =")
	assert.Len(t, args, 2)
	assert.Contains(t, args, cutoff)
}

func TestUpdateFieldsRejectsGuardedColumns(t *testing.T) {
	r := newTestRepo()

	for _, col := range entity.GuardedColumns() {
		err := r.UpdateFields(context.Background(), id.New(), map[string]any{col: nil})
		require.Error(t, err, "column %s", col)
		assert.True(t, apperror.IsCode(err, apperror.CodeSoftDeleteValidation), "column %s", col)
	}
}

func TestUpdateFieldsEmptyMapIsNoop(t *testing.T) {
	r := newTestRepo()
	assert.NoError(t, r.UpdateFields(context.Background(), id.New(), nil))
}

func TestSelectColumnsIncludeTombstone(t *testing.T) {
	r := newTestRepo()

	for _, col := range entity.GuardedColumns() {
		assert.Contains(t, r.selectCols, col)
	}
	assert.Contains(t, r.selectCols, "id")
	assert.Contains(t, r.selectCols, "title")
}

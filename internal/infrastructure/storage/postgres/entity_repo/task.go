package entity_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"taskhive/internal/core/id"
	"taskhive/internal/domain/material"
	"taskhive/internal/domain/task"
	"taskhive/internal/domain/vendor"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const taskTable = "tasks"

// TaskRepo implements task.Repository plus the line-item store the material
// service strips through and the linker the vendor service repoints through.
type TaskRepo struct {
	*soft_repo.Repo[*task.Task]
}

// NewTaskRepo creates a new task repository.
func NewTaskRepo(txm *postgres.TxManager) *TaskRepo {
	return &TaskRepo{
		Repo: soft_repo.NewRepo(
			txm,
			taskTable,
			task.EntityType,
			[]string{"title", "description"},
			func() *task.Task { return &task.Task{} },
		),
	}
}

// HostType implements material.LineItemStore.
func (r *TaskRepo) HostType() string { return task.EntityType }

// StripMaterial implements material.LineItemStore.
func (r *TaskRepo) StripMaterial(ctx context.Context, materialID id.ID) ([]material.StrippedUsage, error) {
	return stripMaterial(ctx, r.TxManager(), taskTable, r.UpdateFields, materialID)
}

// ReinsertUsage implements material.LineItemStore.
func (r *TaskRepo) ReinsertUsage(ctx context.Context, hostID id.ID, u material.Usage) (bool, error) {
	return reinsertUsage(ctx, r.TxManager(), taskTable, r.UpdateFields, hostID, u)
}

// CountLiveByVendor implements vendor.ProjectTaskLinker.
func (r *TaskRepo) CountLiveByVendor(ctx context.Context, vendorID id.ID) (int64, error) {
	q := r.Builder().
		Select("COUNT(*)").
		From(taskTable).
		Where(squirrel.Eq{"vendor_id": vendorID}).
		Where(squirrel.Eq{"is_deleted": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := r.TxManager().GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks by vendor: %w", err)
	}

	return count, nil
}

// RepointVendor implements vendor.ProjectTaskLinker.
func (r *TaskRepo) RepointVendor(ctx context.Context, from, to id.ID) (int64, error) {
	q := r.Builder().
		Update(taskTable).
		Set("vendor_id", to).
		Set("updated_at", time.Now().UTC()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"vendor_id": from}).
		Where(squirrel.Eq{"is_deleted": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build repoint query: %w", err)
	}

	result, err := r.TxManager().GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("repoint tasks: %w", err)
	}

	return result.RowsAffected(), nil
}

var (
	_ material.LineItemStore   = (*TaskRepo)(nil)
	_ vendor.ProjectTaskLinker = (*TaskRepo)(nil)
)

package entity_repo

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/domain/activity"
	"taskhive/internal/domain/material"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const activityTable = "task_activities"

// ActivityRepo implements activity.Repository plus the line-item store for
// activity-level material usage.
type ActivityRepo struct {
	*soft_repo.Repo[*activity.Activity]
}

// NewActivityRepo creates a new activity repository.
func NewActivityRepo(txm *postgres.TxManager) *ActivityRepo {
	return &ActivityRepo{
		Repo: soft_repo.NewRepo(
			txm,
			activityTable,
			activity.EntityType,
			[]string{"note"},
			func() *activity.Activity { return &activity.Activity{} },
		),
	}
}

// HostType implements material.LineItemStore.
func (r *ActivityRepo) HostType() string { return activity.EntityType }

// StripMaterial implements material.LineItemStore.
func (r *ActivityRepo) StripMaterial(ctx context.Context, materialID id.ID) ([]material.StrippedUsage, error) {
	return stripMaterial(ctx, r.TxManager(), activityTable, r.UpdateFields, materialID)
}

// ReinsertUsage implements material.LineItemStore.
func (r *ActivityRepo) ReinsertUsage(ctx context.Context, hostID id.ID, u material.Usage) (bool, error) {
	return reinsertUsage(ctx, r.TxManager(), activityTable, r.UpdateFields, hostID, u)
}

var _ material.LineItemStore = (*ActivityRepo)(nil)

// Package activity holds task progress logs with materials-usage line
// items.
package activity

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/material"
)

// EntityType is the discriminator for polymorphic references and the
// cascade registry.
const EntityType = "activity"

// Activity records progress on a task, optionally consuming materials.
type Activity struct {
	entity.Base
	entity.DeptScoped

	TaskID            id.ID              `db:"task_id" json:"taskId"`
	AddedBy           id.ID              `db:"added_by" json:"addedBy"`
	Note              string             `db:"note" json:"note"`
	Progress          int                `db:"progress" json:"progress"`
	Materials         material.UsageList `db:"materials" json:"materials"`
	TotalMaterialCost types.Money        `db:"total_material_cost" json:"totalMaterialCost"`
}

// Validate implements entity.Validatable.
func (a *Activity) Validate(ctx context.Context) error {
	if id.IsNil(a.TaskID) {
		return apperror.NewValidation("task id is required")
	}
	if a.Progress < 0 || a.Progress > 100 {
		return apperror.NewValidation("progress must be between 0 and 100").
			WithDetail("progress", a.Progress)
	}
	for _, u := range a.Materials {
		if u.Quantity.IsNegative() || u.Quantity.IsZero() {
			return apperror.NewValidation("material quantity must be positive").
				WithDetail("materialId", u.MaterialID)
		}
	}
	return nil
}

// RecomputeTotal refreshes TotalMaterialCost from the line items.
func (a *Activity) RecomputeTotal() {
	a.TotalMaterialCost = a.Materials.Total()
}

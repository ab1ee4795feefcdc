// Package task holds the task hierarchy: routine, assigned, and project
// tasks share one table, discriminated by Kind.
package task

import (
	"context"
	"time"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/material"
)

// EntityType is the discriminator for polymorphic references and the
// cascade registry.
const EntityType = "task"

// Kind discriminates the concrete task variant.
type Kind string

const (
	KindRoutine  Kind = "routine"
	KindAssigned Kind = "assigned"
	KindProject  Kind = "project"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindRoutine || k == KindAssigned || k == KindProject
}

// Task statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task is the single-table task entity. Routine tasks carry material line
// items; project tasks reference a vendor.
type Task struct {
	entity.Base
	entity.DeptScoped

	Kind        Kind         `db:"kind" json:"kind"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Status      string       `db:"status" json:"status"`
	Priority    string       `db:"priority" json:"priority"`
	CreatedBy   id.ID        `db:"created_by" json:"createdBy"`
	Assignees   types.IDList `db:"assignees" json:"assignees"`
	Watchers    types.IDList `db:"watchers" json:"watchers"`
	DueAt       *time.Time   `db:"due_at" json:"dueAt,omitempty"`

	// Routine variant
	Materials         material.UsageList `db:"materials" json:"materials,omitempty"`
	TotalMaterialCost types.Money        `db:"total_material_cost" json:"totalMaterialCost"`

	// Project variant
	VendorID *id.ID `db:"vendor_id" json:"vendorId,omitempty"`
}

// Validate implements entity.Validatable.
func (t *Task) Validate(ctx context.Context) error {
	if t.Title == "" {
		return apperror.NewValidation("task title is required")
	}
	if !t.Kind.Valid() {
		return apperror.NewValidation("invalid task kind").WithDetail("kind", string(t.Kind))
	}

	switch t.Kind {
	case KindProject:
		if len(t.Materials) > 0 {
			return apperror.NewValidation("project tasks do not carry material line items")
		}
	case KindAssigned:
		if len(t.Materials) > 0 {
			return apperror.NewValidation("assigned tasks do not carry material line items")
		}
		if t.VendorID != nil {
			return apperror.NewValidation("assigned tasks do not reference a vendor")
		}
	case KindRoutine:
		if t.VendorID != nil {
			return apperror.NewValidation("routine tasks do not reference a vendor")
		}
		for _, u := range t.Materials {
			if u.Quantity.IsNegative() || u.Quantity.IsZero() {
				return apperror.NewValidation("material quantity must be positive").
					WithDetail("materialId", u.MaterialID)
			}
		}
	}

	return nil
}

// RecomputeTotal refreshes TotalMaterialCost from the line items.
func (t *Task) RecomputeTotal() {
	t.TotalMaterialCost = t.Materials.Total()
}

package dto

import (
	"time"

	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/material"
	"taskhive/internal/domain/task"
)

// CreateTaskRequest is the request body for creating a task. Kind decides
// which variant fields are allowed; the entity validation enforces that.
type CreateTaskRequest struct {
	OrgID       id.ID              `json:"orgId" binding:"required"`
	DeptID      id.ID              `json:"deptId" binding:"required"`
	Kind        task.Kind          `json:"kind" binding:"required"`
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	Priority    string             `json:"priority"`
	Assignees   types.IDList       `json:"assignees"`
	Watchers    types.IDList       `json:"watchers"`
	DueAt       *time.Time         `json:"dueAt"`
	Materials   material.UsageList `json:"materials"`
	VendorID    *id.ID             `json:"vendorId"`
}

// ToEntity converts DTO to domain entity with actorID as the creator.
func (r *CreateTaskRequest) ToEntity(actorID id.ID) *task.Task {
	t := &task.Task{
		Base: entity.NewBase(),
		DeptScoped: entity.DeptScoped{
			TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
			DeptID:       r.DeptID,
		},
		Kind:        r.Kind,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		CreatedBy:   actorID,
		Assignees:   r.Assignees,
		Watchers:    r.Watchers,
		DueAt:       r.DueAt,
		Materials:   r.Materials,
		VendorID:    r.VendorID,
	}
	if t.Status == "" {
		t.Status = task.StatusOpen
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	t.RecomputeTotal()
	return t
}

// UpdateTaskRequest is the request body for updating a task.
type UpdateTaskRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Status      string             `json:"status" binding:"required"`
	Priority    string             `json:"priority" binding:"required"`
	Assignees   types.IDList       `json:"assignees"`
	Watchers    types.IDList       `json:"watchers"`
	DueAt       *time.Time         `json:"dueAt"`
	Materials   material.UsageList `json:"materials"`
	VendorID    *id.ID             `json:"vendorId"`
	Version     int                `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity. Kind is immutable.
func (r *UpdateTaskRequest) ApplyTo(t *task.Task) {
	t.Title = r.Title
	t.Description = r.Description
	t.Status = r.Status
	t.Priority = r.Priority
	t.Assignees = r.Assignees
	t.Watchers = r.Watchers
	t.DueAt = r.DueAt
	t.Materials = r.Materials
	t.VendorID = r.VendorID
	t.Version = r.Version
	t.RecomputeTotal()
}

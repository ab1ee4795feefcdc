package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/activity"
	"taskhive/internal/domain/material"
)

// CreateActivityRequest is the request body for logging task progress.
type CreateActivityRequest struct {
	OrgID     id.ID              `json:"orgId" binding:"required"`
	DeptID    id.ID              `json:"deptId" binding:"required"`
	TaskID    id.ID              `json:"taskId" binding:"required"`
	Note      string             `json:"note"`
	Progress  int                `json:"progress" binding:"min=0,max=100"`
	Materials material.UsageList `json:"materials"`
}

// ToEntity converts DTO to domain entity with actorID as the author.
func (r *CreateActivityRequest) ToEntity(actorID id.ID) *activity.Activity {
	a := &activity.Activity{
		Base: entity.NewBase(),
		DeptScoped: entity.DeptScoped{
			TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
			DeptID:       r.DeptID,
		},
		TaskID:    r.TaskID,
		AddedBy:   actorID,
		Note:      r.Note,
		Progress:  r.Progress,
		Materials: r.Materials,
	}
	a.RecomputeTotal()
	return a
}

// UpdateActivityRequest is the request body for editing an activity.
type UpdateActivityRequest struct {
	Note      string             `json:"note"`
	Progress  int                `json:"progress" binding:"min=0,max=100"`
	Materials material.UsageList `json:"materials"`
	Version   int                `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateActivityRequest) ApplyTo(a *activity.Activity) {
	a.Note = r.Note
	a.Progress = r.Progress
	a.Materials = r.Materials
	a.Version = r.Version
	a.RecomputeTotal()
}

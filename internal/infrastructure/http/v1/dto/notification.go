package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/notification"
)

// CreateNotificationRequest is the request body for creating a notification.
type CreateNotificationRequest struct {
	OrgID      id.ID        `json:"orgId" binding:"required"`
	DeptID     id.ID        `json:"deptId" binding:"required"`
	TargetType string       `json:"targetType" binding:"required"`
	TargetID   id.ID        `json:"targetId" binding:"required"`
	Recipients types.IDList `json:"recipients" binding:"required"`
	Kind       string       `json:"kind" binding:"required"`
	Message    string       `json:"message" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateNotificationRequest) ToEntity() *notification.Notification {
	return &notification.Notification{
		Base: entity.NewBase(),
		DeptScoped: entity.DeptScoped{
			TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
			DeptID:       r.DeptID,
		},
		TargetType: r.TargetType,
		TargetID:   r.TargetID,
		Recipients: r.Recipients,
		Kind:       r.Kind,
		Message:    r.Message,
	}
}

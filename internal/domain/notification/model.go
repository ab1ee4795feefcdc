// Package notification holds in-app notifications with polymorphic
// targets and recipient lists.
package notification

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
)

// EntityType is the discriminator for the cascade registry.
const EntityType = "notification"

// Notification kinds.
const (
	KindAssigned  = "task_assigned"
	KindMentioned = "comment_mention"
	KindProgress  = "activity_progress"
	KindDueSoon   = "task_due_soon"
)

// Notification references an arbitrary entity (the target) and a list of
// recipient users.
type Notification struct {
	entity.Base
	entity.DeptScoped

	TargetType string       `db:"target_type" json:"targetType"`
	TargetID   id.ID        `db:"target_id" json:"targetId"`
	Recipients types.IDList `db:"recipients" json:"recipients"`
	Kind       string       `db:"kind" json:"kind"`
	Message    string       `db:"message" json:"message"`
	ReadBy     types.IDList `db:"read_by" json:"readBy"`
}

// Validate implements entity.Validatable.
func (n *Notification) Validate(ctx context.Context) error {
	if n.Message == "" {
		return apperror.NewValidation("message is required")
	}
	if n.TargetType == "" || id.IsNil(n.TargetID) {
		return apperror.NewValidation("notification target is required")
	}
	if len(n.Recipients) == 0 {
		return apperror.NewValidation("at least one recipient is required")
	}
	return nil
}

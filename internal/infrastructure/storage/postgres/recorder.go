package postgres

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/domain"
)

// Recorder implements domain.TransitionRecorder by writing an audit entry
// and an outbox event for every lifecycle transition. Both writes go
// through the caller's transaction: an aborted cascade records nothing.
type Recorder struct {
	audit  *AuditService
	outbox *OutboxPublisher
}

// NewRecorder creates a transition recorder.
func NewRecorder(audit *AuditService, outbox *OutboxPublisher) *Recorder {
	return &Recorder{audit: audit, outbox: outbox}
}

func (r *Recorder) record(
	ctx context.Context,
	entityType string,
	entityID, orgID id.ID,
	action AuditAction,
	eventType string,
	snapshot any,
) error {
	if err := r.audit.LogTransition(ctx, entityType, entityID, orgID, action, snapshot); err != nil {
		return err
	}
	return r.outbox.Publish(ctx, ChangeEvent{
		EntityType: entityType,
		EntityID:   entityID,
		OrgID:      orgID,
		EventType:  eventType,
		Payload:    snapshot,
	})
}

// RecordCreated implements domain.TransitionRecorder.
func (r *Recorder) RecordCreated(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return r.record(ctx, entityType, entityID, orgID, AuditActionCreate, EventCreated, snapshot)
}

// RecordUpdated implements domain.TransitionRecorder.
func (r *Recorder) RecordUpdated(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return r.record(ctx, entityType, entityID, orgID, AuditActionUpdate, EventUpdated, snapshot)
}

// RecordDeleted implements domain.TransitionRecorder.
func (r *Recorder) RecordDeleted(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return r.record(ctx, entityType, entityID, orgID, AuditActionSoftDelete, EventDeleted, snapshot)
}

// RecordRestored implements domain.TransitionRecorder.
func (r *Recorder) RecordRestored(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return r.record(ctx, entityType, entityID, orgID, AuditActionRestore, EventRestored, snapshot)
}

var _ domain.TransitionRecorder = (*Recorder)(nil)

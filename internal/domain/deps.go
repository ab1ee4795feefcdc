package domain

import (
	"context"

	"taskhive/internal/core/id"
)

// TxChecker reports whether the context carries an open transaction.
// Cascade entry points fail fast when it reports false.
type TxChecker interface {
	InTransaction(ctx context.Context) bool
}

// TransitionRecorder persists the side records of a lifecycle transition:
// the audit snapshot and the outbox change event. Implementations write
// through the caller's transaction so an aborted cascade leaves no trace.
type TransitionRecorder interface {
	RecordCreated(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error
	RecordUpdated(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error
	RecordDeleted(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error
	RecordRestored(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error
}

// NopRecorder discards transition records. Used in tests.
type NopRecorder struct{}

func (NopRecorder) RecordCreated(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return nil
}

func (NopRecorder) RecordUpdated(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return nil
}

func (NopRecorder) RecordDeleted(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return nil
}

func (NopRecorder) RecordRestored(ctx context.Context, entityType string, entityID, orgID id.ID, snapshot any) error {
	return nil
}

// ScopedStore is the slice of Repository the cascade safety nets use:
// bulk tombstone or restore of everything matching a scope condition.
type ScopedStore interface {
	SoftDeleteWhere(ctx context.Context, where Where, by *id.ID) (int64, error)
	RestoreWhere(ctx context.Context, where Where, by *id.ID) (int64, error)
}

// IDLister pages entity IDs in stable order for batched cascades.
type IDLister interface {
	IDsWhere(ctx context.Context, where Where, vis Visibility, limit int, afterID id.ID) ([]id.ID, error)
}

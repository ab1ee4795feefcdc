// Package cascade holds the pieces shared by every cascade orchestrator:
// the transaction-required guard and the registry polymorphic callers use
// to reach an entity type's cascader by discriminator.
package cascade

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
)

// Cascader is implemented by every entity service that participates in
// the dependency graph. Both operations require an open transaction in ctx
// and take the acting user from the context.
type Cascader interface {
	// SoftDeleteCascade tombstones the entity and all entities referencing
	// it, children fully before the parent, inside the caller's transaction.
	SoftDeleteCascade(ctx context.Context, entityID id.ID) error

	// RestoreCascade reverses the tombstone, parent first, after validating
	// the parent chain is live.
	RestoreCascade(ctx context.Context, entityID id.ID) error
}

// RequireTx fails fast when the context carries no open transaction.
// Called first by every cascade entry point, before touching storage.
func RequireTx(ctx context.Context, txc domain.TxChecker, operation string) error {
	if !txc.InTransaction(ctx) {
		return apperror.NewTransactionRequired(operation)
	}
	return nil
}

// Registry maps entity-type discriminators to cascaders. Assembled once at
// process start; not safe for concurrent registration afterwards.
type Registry struct {
	cascaders map[string]Cascader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cascaders: make(map[string]Cascader)}
}

// Register binds an entity-type name to its cascader.
func (r *Registry) Register(entityType string, c Cascader) {
	r.cascaders[entityType] = c
}

// Get returns the cascader for the entity type.
func (r *Registry) Get(entityType string) (Cascader, bool) {
	c, ok := r.cascaders[entityType]
	return c, ok
}

// SoftDelete dispatches a cascade delete by discriminator.
func (r *Registry) SoftDelete(ctx context.Context, entityType string, entityID id.ID) error {
	c, ok := r.cascaders[entityType]
	if !ok {
		return apperror.NewValidation("unknown entity type").WithDetail("entityType", entityType)
	}
	return c.SoftDeleteCascade(ctx, entityID)
}

// Restore dispatches a cascade restore by discriminator.
func (r *Registry) Restore(ctx context.Context, entityType string, entityID id.ID) error {
	c, ok := r.cascaders[entityType]
	if !ok {
		return apperror.NewValidation("unknown entity type").WithDetail("entityType", entityType)
	}
	return c.RestoreCascade(ctx, entityID)
}

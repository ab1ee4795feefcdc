// Package refs validates foreign-key-shaped fields before writes: live
// same-tenant references, list cardinality, polymorphic parents, and
// comment-thread depth. All failures surface as REFERENTIAL_INTEGRITY with
// the violated field named in details; none are retried.
package refs

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
)

// Ref is the tenant scope of a live referenced record.
// DeptID is the nil ID for org-level entities.
type Ref struct {
	OrgID  id.ID
	DeptID id.ID
}

// Prober looks up a live record's tenant scope by ID.
// Returns nil (no error) when no live record exists.
type Prober func(ctx context.Context, entityID id.ID) (*Ref, error)

// UserRef extends Ref with the user's role for watcher checks.
type UserRef struct {
	OrgID  id.ID
	DeptID id.ID
	Role   appctx.Role
}

// UserProber looks up a live user's scope and role.
type UserProber func(ctx context.Context, userID id.ID) (*UserRef, error)

// Resolver dispatches polymorphic references by discriminator.
// Probes are registered once at process start (dependency-injection graph
// assembled in cmd), which breaks the compile-time cycles the entity
// packages would otherwise have.
type Resolver struct {
	probes map[string]Prober
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{probes: make(map[string]Prober)}
}

// Register binds a discriminator value to a live-existence probe.
func (r *Resolver) Register(discriminator string, p Prober) {
	r.probes[discriminator] = p
}

// Resolve returns the scope of the live record the reference points to.
// Unknown discriminators and dead references both fail.
func (r *Resolver) Resolve(ctx context.Context, field, discriminator string, entityID id.ID) (*Ref, error) {
	probe, ok := r.probes[discriminator]
	if !ok {
		return nil, apperror.NewReferentialIntegrity(field, "unknown reference type").
			WithDetail("discriminator", discriminator)
	}

	ref, err := probe(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, apperror.NewReferentialIntegrity(field, "referenced record does not exist or is deleted").
			WithDetail("discriminator", discriminator).
			WithDetail("id", entityID)
	}

	return ref, nil
}

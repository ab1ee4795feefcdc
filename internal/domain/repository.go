// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/filter"
)

// --- Visibility ---

// Visibility controls whether reads see tombstoned records.
// The zero value excludes them; callers opt in per call.
type Visibility int

const (
	// ActiveOnly narrows every read to is_deleted = false (the default).
	ActiveOnly Visibility = iota

	// WithDeleted includes tombstoned records.
	WithDeleted

	// DeletedOnly returns tombstoned records exclusively.
	DeletedOnly
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs substring search on searchable fields
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// OrgID scopes the listing to a tenant
	OrgID id.ID

	// DeptID scopes the listing to a department
	DeptID id.ID

	// Visibility controls tombstone filtering for this call
	Visibility Visibility

	// Conditions holds caller-supplied filters. An explicit condition on
	// is_deleted takes precedence over Visibility.
	Conditions []filter.Item

	// OrderBy specifies sorting (e.g., "created_at", "-updated_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-created_at",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Where is a conjunction of column = value (or column IN values, when the
// value is a slice) conditions used by cascade and bulk operations.
type Where map[string]any

// AtOrAfter marks a Where value as a lower-bound (>=) comparison instead
// of an equality. Restore cascades use it on deleted_at to leave records
// tombstoned before the parent untouched.
type AtOrAfter struct {
	Value any
}

// --- Repository Interface ---

// Repository defines storage operations shared by every soft-deletable
// entity type. Physical deletion is intentionally absent: Delete and
// DeleteWhere exist only to fail with HARD_DELETE_BLOCKED.
type Repository[T entity.Validatable] interface {
	// Create inserts a new entity after the tombstone write guard passes.
	Create(ctx context.Context, e T) error

	// GetByID retrieves a live entity by ID.
	GetByID(ctx context.Context, entityID id.ID) (T, error)

	// GetByIDAny retrieves an entity regardless of tombstone state.
	GetByIDAny(ctx context.Context, entityID id.ID) (T, error)

	// Update modifies an existing entity (optimistic locking).
	// Tombstone columns are never written by Update.
	Update(ctx context.Context, e T) error

	// UpdateFields applies a partial update. Naming a tombstone column
	// fails with SOFT_DELETE_VALIDATION.
	UpdateFields(ctx context.Context, entityID id.ID, fields map[string]any) error

	// List retrieves entities with filtering and pagination.
	List(ctx context.Context, f ListFilter) (ListResult[T], error)

	// Count counts entities matching the filter.
	Count(ctx context.Context, f ListFilter) (int64, error)

	// Exists checks existence of a live entity.
	Exists(ctx context.Context, entityID id.ID) (bool, error)

	// ExistsAny checks existence regardless of tombstone state.
	ExistsAny(ctx context.Context, entityID id.ID) (bool, error)

	// FindWhere returns entities matching the conjunction, respecting visibility.
	FindWhere(ctx context.Context, where Where, vis Visibility) ([]T, error)

	// IDsWhere returns matching IDs in stable order, batched for bulk cascades.
	IDsWhere(ctx context.Context, where Where, vis Visibility, limit int, afterID id.ID) ([]id.ID, error)

	// Delete always fails with HARD_DELETE_BLOCKED.
	Delete(ctx context.Context, entityID id.ID) error

	// DeleteWhere always fails with HARD_DELETE_BLOCKED.
	DeleteWhere(ctx context.Context, where Where) error

	// SoftDelete tombstones a single live entity.
	// Fails with ALREADY_DELETED when the entity is tombstoned.
	SoftDelete(ctx context.Context, entityID id.ID, by *id.ID) error

	// SoftDeleteWhere tombstones all live matches; already-tombstoned
	// records are silently skipped. Returns the number tombstoned.
	SoftDeleteWhere(ctx context.Context, where Where, by *id.ID) (int64, error)

	// Restore reverses the tombstone on a single entity.
	// Fails with NOT_DELETED when the entity is live.
	Restore(ctx context.Context, entityID id.ID, by *id.ID) error

	// RestoreWhere restores all tombstoned matches. Returns the number restored.
	RestoreWhere(ctx context.Context, where Where, by *id.ID) (int64, error)
}

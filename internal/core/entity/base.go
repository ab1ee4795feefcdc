package entity

import (
	"context"
	"time"

	"taskhive/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Identified is implemented by every persisted entity.
type Identified interface {
	GetID() id.ID
	Deleted() bool
}

// Base contains common fields for all soft-deletable entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	Tombstone
}

// NewBase creates a new Base with generated ID and timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// GetID implements Identified.
func (b *Base) GetID() id.ID {
	return b.ID
}

// Deleted implements Identified.
func (b *Base) Deleted() bool {
	return b.IsDeleted
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// SetVersion updates the version number (used by repository after sync).
func (b *Base) SetVersion(v int) {
	b.Version = v
}

// TenantScoped is embedded by every entity owned by an organization.
// The organization is the top-level isolation boundary for all data.
type TenantScoped struct {
	// OrgID is the owning organization (tenant)
	OrgID id.ID `db:"org_id" json:"orgId"`
}

// GetOrgID returns the owning organization.
func (t *TenantScoped) GetOrgID() id.ID {
	return t.OrgID
}

// DeptScoped extends TenantScoped with a department dimension.
type DeptScoped struct {
	TenantScoped

	// DeptID is the owning department within the organization
	DeptID id.ID `db:"dept_id" json:"deptId"`
}

// GetDeptID returns the owning department.
func (d *DeptScoped) GetDeptID() id.ID {
	return d.DeptID
}

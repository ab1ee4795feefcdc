package entity

import (
	"time"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
)

// Tombstone is the soft-delete field set attached to every soft-deletable
// entity. Records are never physically removed through the repositories;
// deletion flips these fields, restore flips them back.
//
// Invariant: IsDeleted == true exactly when DeletedAt != nil.
// RestoreCount is monotonic and never reset.
type Tombstone struct {
	// IsDeleted is the tombstone flag
	IsDeleted bool `db:"is_deleted" json:"isDeleted"`

	// DeletedAt is set exactly when IsDeleted transitions to true
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`

	// DeletedBy is the acting user who deleted the record
	DeletedBy *id.ID `db:"deleted_by" json:"deletedBy,omitempty"`

	// RestoredAt is set on each restore
	RestoredAt *time.Time `db:"restored_at" json:"restoredAt,omitempty"`

	// RestoredBy is the acting user who restored the record
	RestoredBy *id.ID `db:"restored_by" json:"restoredBy,omitempty"`

	// RestoreCount is the number of times this record has been restored
	RestoreCount int `db:"restore_count" json:"restoreCount"`
}

// Tombstoned reports whether the record is soft-deleted.
func (t *Tombstone) Tombstoned() bool {
	return t.IsDeleted
}

// MarkDeleted transitions ACTIVE -> TOMBSTONED.
// Returns ALREADY_DELETED when the record is already tombstoned.
func (t *Tombstone) MarkDeleted(by *id.ID, at time.Time) error {
	if t.IsDeleted {
		return apperror.NewAlreadyDeleted("entity", nil)
	}
	t.IsDeleted = true
	t.DeletedAt = &at
	t.DeletedBy = by
	return nil
}

// MarkRestored transitions TOMBSTONED -> ACTIVE.
// Clears DeletedAt/DeletedBy, records the restore, increments RestoreCount.
// Returns NOT_DELETED when the record is not tombstoned.
func (t *Tombstone) MarkRestored(by *id.ID, at time.Time) error {
	if !t.IsDeleted {
		return apperror.NewNotDeleted("entity", nil)
	}
	t.IsDeleted = false
	t.DeletedAt = nil
	t.DeletedBy = nil
	t.RestoredAt = &at
	t.RestoredBy = by
	t.RestoreCount++
	return nil
}

// CheckInvariant verifies IsDeleted <=> DeletedAt != nil.
func (t *Tombstone) CheckInvariant() error {
	if t.IsDeleted != (t.DeletedAt != nil) {
		return apperror.NewSoftDeleteValidation("deletedAt").
			WithDetail("isDeleted", t.IsDeleted)
	}
	return nil
}

// guardedColumns are the tombstone columns that can only change through the
// sanctioned soft-delete/restore operations. The repositories strip them from
// every regular update and reject field updates that name them.
var guardedColumns = map[string]struct{}{
	"is_deleted":    {},
	"deleted_at":    {},
	"deleted_by":    {},
	"restored_at":   {},
	"restored_by":   {},
	"restore_count": {},
}

// IsGuardedColumn reports whether col is a tombstone column.
func IsGuardedColumn(col string) bool {
	_, ok := guardedColumns[col]
	return ok
}

// GuardedColumns returns the tombstone column names.
func GuardedColumns() []string {
	cols := make([]string, 0, len(guardedColumns))
	for col := range guardedColumns {
		cols = append(cols, col)
	}
	return cols
}

package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
)

func TestTombstone_MarkDeleted(t *testing.T) {
	actor := id.New()
	before := time.Now().UTC()

	var ts Tombstone
	err := ts.MarkDeleted(&actor, time.Now().UTC())
	require.NoError(t, err)

	after := time.Now().UTC()

	assert.True(t, ts.IsDeleted)
	require.NotNil(t, ts.DeletedAt)
	assert.False(t, ts.DeletedAt.Before(before))
	assert.False(t, ts.DeletedAt.After(after))
	require.NotNil(t, ts.DeletedBy)
	assert.Equal(t, actor, *ts.DeletedBy)
	assert.NoError(t, ts.CheckInvariant())
}

func TestTombstone_MarkDeleted_AlreadyDeleted(t *testing.T) {
	var ts Tombstone
	require.NoError(t, ts.MarkDeleted(nil, time.Now().UTC()))

	err := ts.MarkDeleted(nil, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeAlreadyDeleted))

	// Field state stays consistent after the rejected transition.
	assert.NoError(t, ts.CheckInvariant())
}

func TestTombstone_MarkRestored(t *testing.T) {
	deleter := id.New()
	restorer := id.New()

	var ts Tombstone
	require.NoError(t, ts.MarkDeleted(&deleter, time.Now().UTC()))
	require.NoError(t, ts.MarkRestored(&restorer, time.Now().UTC()))

	assert.False(t, ts.IsDeleted)
	assert.Nil(t, ts.DeletedAt)
	assert.Nil(t, ts.DeletedBy)
	require.NotNil(t, ts.RestoredAt)
	require.NotNil(t, ts.RestoredBy)
	assert.Equal(t, restorer, *ts.RestoredBy)
	assert.Equal(t, 1, ts.RestoreCount)
	assert.NoError(t, ts.CheckInvariant())
}

func TestTombstone_MarkRestored_NotDeleted(t *testing.T) {
	var ts Tombstone
	err := ts.MarkRestored(nil, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotDeleted))
	assert.Equal(t, 0, ts.RestoreCount)
}

func TestTombstone_RestoreCountMonotonic(t *testing.T) {
	var ts Tombstone
	for i := 1; i <= 3; i++ {
		require.NoError(t, ts.MarkDeleted(nil, time.Now().UTC()))
		require.NoError(t, ts.MarkRestored(nil, time.Now().UTC()))
		assert.Equal(t, i, ts.RestoreCount)
	}
}

func TestTombstone_GuardedColumns(t *testing.T) {
	for _, col := range []string{"is_deleted", "deleted_at", "deleted_by", "restored_at", "restored_by", "restore_count"} {
		assert.True(t, IsGuardedColumn(col), col)
	}
	assert.False(t, IsGuardedColumn("name"))
	assert.Len(t, GuardedColumns(), 6)
}

func TestTombstone_CheckInvariant_Violation(t *testing.T) {
	ts := Tombstone{IsDeleted: true} // deleted_at missing
	err := ts.CheckInvariant()
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeSoftDeleteValidation))
}

package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteStampPinnedOnce(t *testing.T) {
	ctx := EnsureDeleteStamp(context.Background())

	at, ok := DeleteStamp(ctx)
	require.True(t, ok)
	assert.Equal(t, at, StampNow(ctx))

	// Nested cascades reuse the outer stamp.
	at2, ok := DeleteStamp(EnsureDeleteStamp(ctx))
	require.True(t, ok)
	assert.Equal(t, at, at2)
}

func TestStampNowWithoutPin(t *testing.T) {
	before := time.Now().UTC()
	got := StampNow(context.Background())
	assert.False(t, got.Before(before))

	_, ok := DeleteStamp(context.Background())
	assert.False(t, ok)
}

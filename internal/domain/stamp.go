package domain

import (
	"context"
	"time"
)

type deleteStampKey struct{}

// WithDeleteStamp pins the tombstone timestamp used by every soft delete
// under this context. A cascade pins one stamp at its entry point so the
// parent and all records swept with it share one deleted_at; a later
// scoped restore can then tell cascade victims from records tombstoned
// earlier on their own.
func WithDeleteStamp(ctx context.Context, at time.Time) context.Context {
	return context.WithValue(ctx, deleteStampKey{}, at)
}

// DeleteStamp returns the pinned tombstone timestamp, if any.
func DeleteStamp(ctx context.Context) (time.Time, bool) {
	at, ok := ctx.Value(deleteStampKey{}).(time.Time)
	return at, ok
}

// EnsureDeleteStamp pins the current time unless an outer cascade already
// pinned one.
func EnsureDeleteStamp(ctx context.Context) context.Context {
	if _, ok := DeleteStamp(ctx); ok {
		return ctx
	}
	return WithDeleteStamp(ctx, time.Now().UTC())
}

// StampNow returns the pinned tombstone timestamp, or the current time
// when none is pinned.
func StampNow(ctx context.Context) time.Time {
	if at, ok := DeleteStamp(ctx); ok {
		return at
	}
	return time.Now().UTC()
}

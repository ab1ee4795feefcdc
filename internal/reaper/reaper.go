// Package reaper physically purges tombstoned rows whose retention window
// has expired. This is the only place in the codebase that issues SQL
// DELETE against entity tables; repositories block hard deletes entirely.
package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhive/pkg/logger"
)

// Retention configures how long tombstones of one table are kept before
// the purge. Zero means never purge.
type Retention struct {
	Table     string
	KeepFor   time.Duration
	BatchSize int
}

// DefaultRetention is applied to tables without an explicit window.
const DefaultRetention = 90 * 24 * time.Hour

// DefaultBatchSize bounds rows purged per statement.
const DefaultBatchSize = 1000

// DefaultSchedule returns the retention plan for every entity table.
// Organizations are never purged: their tombstones anchor the audit trail
// of everything that lived under them.
func DefaultSchedule() []Retention {
	return []Retention{
		{Table: "organizations", KeepFor: 0},
		{Table: "departments", KeepFor: DefaultRetention},
		{Table: "users", KeepFor: DefaultRetention},
		{Table: "tasks", KeepFor: DefaultRetention},
		{Table: "task_activities", KeepFor: DefaultRetention},
		{Table: "comments", KeepFor: DefaultRetention},
		{Table: "attachments", KeepFor: DefaultRetention},
		{Table: "materials", KeepFor: DefaultRetention},
		{Table: "notifications", KeepFor: 30 * 24 * time.Hour},
		{Table: "vendors", KeepFor: DefaultRetention},
	}
}

// Reaper runs the purge over a connection pool, outside any business
// transaction. Best-effort: a failed table is logged and skipped.
type Reaper struct {
	pool     *pgxpool.Pool
	schedule []Retention
	interval time.Duration
}

// New creates a reaper with the given schedule.
func New(pool *pgxpool.Pool, schedule []Retention, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reaper{pool: pool, schedule: schedule, interval: interval}
}

// EnsureIndexes idempotently creates the two indexes the soft-delete
// subsystem relies on per table: the partial hot-path index covering live
// rows, and the reap index over tombstone timestamps.
func (r *Reaper) EnsureIndexes(ctx context.Context) error {
	for _, ret := range r.schedule {
		hotPath := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_live ON %s (id) WHERE is_deleted = false`,
			ret.Table, ret.Table,
		)
		if _, err := r.pool.Exec(ctx, hotPath); err != nil {
			return fmt.Errorf("create live index on %s: %w", ret.Table, err)
		}

		reap := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_reap ON %s (deleted_at) WHERE is_deleted = true`,
			ret.Table, ret.Table,
		)
		if _, err := r.pool.Exec(ctx, reap); err != nil {
			return fmt.Errorf("create reap index on %s: %w", ret.Table, err)
		}
	}
	return nil
}

// RunOnce purges expired tombstones from every scheduled table and returns
// the total number of rows removed.
func (r *Reaper) RunOnce(ctx context.Context) (int64, error) {
	var total int64
	for _, ret := range r.schedule {
		if ret.KeepFor == 0 {
			continue
		}

		n, err := r.purgeTable(ctx, ret)
		if err != nil {
			logger.Error(ctx, "reap failed", "table", ret.Table, "error", err)
			continue
		}
		if n > 0 {
			logger.Info(ctx, "reaped expired tombstones", "table", ret.Table, "rows", n)
		}
		total += n
	}
	return total, nil
}

// purgeTable deletes expired tombstones in batches until none remain.
func (r *Reaper) purgeTable(ctx context.Context, ret Retention) (int64, error) {
	batch := ret.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	cutoff := time.Now().UTC().Add(-ret.KeepFor)

	sql := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id IN (
			SELECT id FROM %s
			WHERE is_deleted = true AND deleted_at < $1
			ORDER BY deleted_at
			LIMIT $2
		)
	`, ret.Table, ret.Table)

	var total int64
	for {
		result, err := r.pool.Exec(ctx, sql, cutoff, batch)
		if err != nil {
			return total, err
		}

		n := result.RowsAffected()
		total += n
		if n < int64(batch) {
			return total, nil
		}
	}
}

// Run loops RunOnce on a ticker until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "reaper stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				logger.Error(ctx, "reap cycle failed", "error", err)
			}
		}
	}
}

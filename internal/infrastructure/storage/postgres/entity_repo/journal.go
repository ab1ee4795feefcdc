package entity_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taskhive/internal/core/id"
	"taskhive/internal/domain/material"
	"taskhive/internal/infrastructure/storage/postgres"
)

const journalTable = "material_usage_journal"

// MaterialJournalRepo implements material.Journal over a plain table: one
// row per line item stripped during a material delete.
type MaterialJournalRepo struct {
	txm *postgres.TxManager
}

// NewMaterialJournalRepo creates a new journal repository.
func NewMaterialJournalRepo(txm *postgres.TxManager) *MaterialJournalRepo {
	return &MaterialJournalRepo{txm: txm}
}

func (r *MaterialJournalRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Record inserts a journal entry.
func (r *MaterialJournalRepo) Record(ctx context.Context, e *material.JournalEntry) error {
	q := r.builder().
		Insert(journalTable).
		SetMap(map[string]any{
			"id":          e.ID,
			"material_id": e.MaterialID,
			"org_id":      e.OrgID,
			"host_type":   e.HostType,
			"host_id":     e.HostID,
			"quantity":    e.Quantity,
			"unit_price":  e.UnitPrice,
			"removed_at":  e.RemovedAt,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build journal insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	return nil
}

// OpenEntries returns entries for the material not yet re-inserted, oldest
// first.
func (r *MaterialJournalRepo) OpenEntries(ctx context.Context, materialID id.ID) ([]*material.JournalEntry, error) {
	q := r.builder().
		Select("id", "material_id", "org_id", "host_type", "host_id",
			"quantity", "unit_price", "removed_at", "reinserted_at").
		From(journalTable).
		Where(squirrel.Eq{"material_id": materialID}).
		Where(squirrel.Eq{"reinserted_at": nil}).
		OrderBy("removed_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build journal select: %w", err)
	}

	var entries []*material.JournalEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select journal entries: %w", err)
	}

	return entries, nil
}

// MarkReinserted closes a journal entry.
func (r *MaterialJournalRepo) MarkReinserted(ctx context.Context, entryID id.ID) error {
	q := r.builder().
		Update(journalTable).
		Set("reinserted_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build journal update: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark journal entry reinserted: %w", err)
	}

	return nil
}

var _ material.Journal = (*MaterialJournalRepo)(nil)

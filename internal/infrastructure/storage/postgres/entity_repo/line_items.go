package entity_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"taskhive/internal/core/id"
	"taskhive/internal/domain/material"
	"taskhive/internal/infrastructure/storage/postgres"
)

// lineItemRow is the slice of a host row the material strip needs.
type lineItemRow struct {
	ID        id.ID              `db:"id"`
	Materials material.UsageList `db:"materials"`
}

// stripMaterial removes every line item for the material from live rows of
// the host table, using a JSONB containment match to touch only rows that
// actually reference it. Totals are recomputed per row.
func stripMaterial(
	ctx context.Context,
	txm *postgres.TxManager,
	table string,
	updateFields func(context.Context, id.ID, map[string]any) error,
	materialID id.ID,
) ([]material.StrippedUsage, error) {
	match, err := json.Marshal([]map[string]any{{"materialId": materialID}})
	if err != nil {
		return nil, fmt.Errorf("marshal containment match: %w", err)
	}

	sql := fmt.Sprintf(
		`SELECT id, materials FROM %s WHERE is_deleted = false AND materials @> $1`,
		table,
	)

	var rows []lineItemRow
	if err := pgxscan.Select(ctx, txm.GetQuerier(ctx), &rows, sql, match); err != nil {
		return nil, fmt.Errorf("select line-item hosts %s: %w", table, err)
	}

	var stripped []material.StrippedUsage
	for _, row := range rows {
		kept, removed := row.Materials.Without(materialID)
		if len(removed) == 0 {
			continue
		}

		if err := updateFields(ctx, row.ID, map[string]any{
			"materials":           kept,
			"total_material_cost": kept.Total(),
		}); err != nil {
			return nil, err
		}

		for _, u := range removed {
			stripped = append(stripped, material.StrippedUsage{HostID: row.ID, Usage: u})
		}
	}

	return stripped, nil
}

// reinsertUsage re-adds a line item to a live host row. Returns false
// without error when the host is gone or tombstoned.
func reinsertUsage(
	ctx context.Context,
	txm *postgres.TxManager,
	table string,
	updateFields func(context.Context, id.ID, map[string]any) error,
	hostID id.ID,
	u material.Usage,
) (bool, error) {
	sql := fmt.Sprintf(
		`SELECT id, materials FROM %s WHERE id = $1 AND is_deleted = false`,
		table,
	)

	var row lineItemRow
	if err := pgxscan.Get(ctx, txm.GetQuerier(ctx), &row, sql, hostID); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("select line-item host %s: %w", table, err)
	}

	list := append(row.Materials, u)
	if err := updateFields(ctx, hostID, map[string]any{
		"materials":           list,
		"total_material_cost": list.Total(),
	}); err != nil {
		return false, err
	}

	return true, nil
}

package cascade

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/domain"
)

// DefaultBatchSize bounds how many IDs a bulk cascade reads per page.
const DefaultBatchSize = 100

// SoftDeleteMany applies the single-entity cascade to every live match,
// sequentially, inside the caller's transaction. IDs are paged in stable
// order to bound memory. Returns the number of entities cascaded.
func SoftDeleteMany(
	ctx context.Context,
	txc domain.TxChecker,
	lister domain.IDLister,
	c Cascader,
	where domain.Where,
	batchSize int,
) (int64, error) {
	if err := RequireTx(ctx, txc, "bulk cascade delete"); err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var total int64
	after := id.Nil()
	for {
		ids, err := lister.IDsWhere(ctx, where, domain.ActiveOnly, batchSize, after)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}

		for _, entityID := range ids {
			if err := c.SoftDeleteCascade(ctx, entityID); err != nil {
				return total, err
			}
			total++
		}
		after = ids[len(ids)-1]
	}
}

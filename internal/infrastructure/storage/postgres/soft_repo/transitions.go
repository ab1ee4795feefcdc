package soft_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
)

// Delete always fails: physical deletion is disabled repository-wide.
func (r *Repo[T]) Delete(ctx context.Context, entityID id.ID) error {
	return apperror.NewHardDeleteBlocked(r.entityName).WithDetail("id", entityID)
}

// DeleteWhere always fails: physical deletion is disabled repository-wide.
func (r *Repo[T]) DeleteWhere(ctx context.Context, where domain.Where) error {
	return apperror.NewHardDeleteBlocked(r.entityName)
}

// SoftDelete tombstones a single live entity. deleted_at is the cascade
// stamp when the context carries one, so every record of one cascade
// shares one timestamp.
// The WHERE clause doubles as the state check: zero rows affected means the
// entity is either missing or already tombstoned, disambiguated afterwards.
func (r *Repo[T]) SoftDelete(ctx context.Context, entityID id.ID, by *id.ID) error {
	now := domain.StampNow(ctx)

	q := r.Builder().
		Update(r.tableName).
		Set("is_deleted", true).
		Set("deleted_at", now).
		Set("deleted_by", by).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"is_deleted": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		exists, err := r.ExistsAny(ctx, entityID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewAlreadyDeleted(r.entityName, entityID)
		}
		return apperror.NewNotFound(r.entityName, entityID.String())
	}

	return nil
}

// SoftDeleteWhere tombstones all live matches. Already-tombstoned records are
// excluded by the predicate and keep their original deletion metadata, so bulk
// deletes are idempotent per record. Returns the number tombstoned.
func (r *Repo[T]) SoftDeleteWhere(ctx context.Context, where domain.Where, by *id.ID) (int64, error) {
	now := domain.StampNow(ctx)

	q := r.Builder().
		Update(r.tableName).
		Set("is_deleted", true).
		Set("deleted_at", now).
		Set("deleted_by", by).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"is_deleted": false})

	if len(where) > 0 {
		q = q.Where(whereSqlizer(where))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build bulk soft delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk soft delete %s: %w", r.tableName, err)
	}

	return result.RowsAffected(), nil
}

// Restore reverses the tombstone on a single entity.
func (r *Repo[T]) Restore(ctx context.Context, entityID id.ID, by *id.ID) error {
	now := time.Now().UTC()

	q := r.Builder().
		Update(r.tableName).
		Set("is_deleted", false).
		Set("deleted_at", nil).
		Set("deleted_by", nil).
		Set("restored_at", now).
		Set("restored_by", by).
		Set("restore_count", squirrel.Expr("restore_count + 1")).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"is_deleted": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build restore: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("restore %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		exists, err := r.ExistsAny(ctx, entityID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewNotDeleted(r.entityName, entityID)
		}
		return apperror.NewNotFound(r.entityName, entityID.String())
	}

	return nil
}

// RestoreWhere restores all tombstoned matches. Returns the number restored.
func (r *Repo[T]) RestoreWhere(ctx context.Context, where domain.Where, by *id.ID) (int64, error) {
	now := time.Now().UTC()

	q := r.Builder().
		Update(r.tableName).
		Set("is_deleted", false).
		Set("deleted_at", nil).
		Set("deleted_by", nil).
		Set("restored_at", now).
		Set("restored_by", by).
		Set("restore_count", squirrel.Expr("restore_count + 1")).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"is_deleted": true})

	if len(where) > 0 {
		q = q.Where(whereSqlizer(where))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build bulk restore: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk restore %s: %w", r.tableName, err)
	}

	return result.RowsAffected(), nil
}

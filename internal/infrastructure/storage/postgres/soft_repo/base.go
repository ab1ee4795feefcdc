// Package soft_repo provides the generic PostgreSQL repository that equips
// every entity type with the soft-delete lifecycle: tombstone fields, the
// implicit not-tombstoned query filter, blocked physical deletes, and the
// sanctioned soft-delete/restore transitions.
package soft_repo

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/filter"
	"taskhive/internal/infrastructure/storage/postgres"
)

// Repo implements domain.Repository for any entity embedding entity.Base.
// Embed this in entity-specific repositories.
type Repo[T entity.Validatable] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	searchCols []string
	newFn      func() T
}

// NewRepo creates a repository for one entity table.
// Columns are derived from the entity's "db" tags once, at construction.
func NewRepo[T entity.Validatable](
	txm *postgres.TxManager,
	tableName string,
	entityName string,
	searchCols []string,
	newFn func() T,
) *Repo[T] {
	return &Repo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
		searchCols: searchCols,
		newFn:      newFn,
	}
}

// Table returns the backing table name.
func (r *Repo[T]) Table() string {
	return r.tableName
}

// EntityName returns the entity name used in error messages.
func (r *Repo[T]) EntityName() string {
	return r.entityName
}

// TxManager exposes the transaction manager for entity-specific queries.
func (r *Repo[T]) TxManager() *postgres.TxManager {
	return r.txm
}

// SelectColumns returns the column list derived from the entity's db tags.
func (r *Repo[T]) SelectColumns() []string {
	return r.selectCols
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *Repo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Repo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// applyVisibility injects the implicit tombstone predicate.
// Callers opt in to tombstoned records per call; WithDeleted adds nothing.
func applyVisibility(q squirrel.SelectBuilder, vis domain.Visibility) squirrel.SelectBuilder {
	switch vis {
	case domain.WithDeleted:
		return q
	case domain.DeletedOnly:
		return q.Where(squirrel.Eq{"is_deleted": true})
	default:
		return q.Where(squirrel.Eq{"is_deleted": false})
	}
}

// --- Create / Read / Update ---

// Create inserts a new entity using its "db" tags.
// The write guard rejects entities whose tombstone fields are pre-set:
// tombstone state only ever changes through SoftDelete/Restore.
func (r *Repo[T]) Create(ctx context.Context, e T) error {
	data := postgres.StructToMap(e)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	if err := checkTombstoneClean(data); err != nil {
		return err
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err = querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// checkTombstoneClean enforces the write-time guard on inserts: every
// tombstone column must hold its zero value.
func checkTombstoneClean(data map[string]any) error {
	for _, col := range entity.GuardedColumns() {
		val, ok := data[col]
		if !ok || val == nil {
			continue
		}
		if !reflect.ValueOf(val).IsZero() {
			return apperror.NewSoftDeleteValidation(col)
		}
	}
	return nil
}

// GetByID retrieves a live entity by ID.
func (r *Repo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.getByID(ctx, entityID, domain.ActiveOnly)
}

// GetByIDAny retrieves an entity regardless of tombstone state.
// Restore paths and cascades use this; regular reads never do.
func (r *Repo[T]) GetByIDAny(ctx context.Context, entityID id.ID) (T, error) {
	return r.getByID(ctx, entityID, domain.WithDeleted)
}

func (r *Repo[T]) getByID(ctx context.Context, entityID id.ID, vis domain.Visibility) (T, error) {
	e := r.newFn()

	q := applyVisibility(r.baseSelect(), vis).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return e, fmt.Errorf("get by id: %w", err)
	}

	return e, nil
}

// Update modifies an existing entity with optimistic locking.
// Tombstone columns are stripped from the SET map unconditionally; they are
// not expressible through Update.
func (r *Repo[T]) Update(ctx context.Context, e T) error {
	data := postgres.StructToMap(e)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "version" || col == "created_at" {
			continue
		}
		if entity.IsGuardedColumn(col) {
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}
	filteredData["updated_at"] = time.Now().UTC()

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version}).
		Where(squirrel.Eq{"is_deleted": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return r.classifyUpdateMiss(ctx, entityID)
	}

	return nil
}

// classifyUpdateMiss disambiguates a zero-row update: the row may be
// absent, tombstoned, or live at another version.
func (r *Repo[T]) classifyUpdateMiss(ctx context.Context, entityID any) error {
	eid, ok := entityID.(id.ID)
	if !ok {
		return apperror.NewConcurrentModification(r.entityName, entityID)
	}

	exists, err := r.ExistsAny(ctx, eid)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound(r.entityName, eid.String())
	}

	live, err := r.Exists(ctx, eid)
	if err != nil {
		return err
	}
	if !live {
		return apperror.NewAlreadyDeleted(r.entityName, eid)
	}

	return apperror.NewConcurrentModification(r.entityName, eid)
}

// UpdateFields applies a partial update to a live entity.
// Naming a tombstone column fails with SOFT_DELETE_VALIDATION.
func (r *Repo[T]) UpdateFields(ctx context.Context, entityID id.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	for col := range fields {
		if entity.IsGuardedColumn(col) {
			return apperror.NewSoftDeleteValidation(col)
		}
	}

	setMap := make(map[string]any, len(fields)+1)
	for col, val := range fields {
		setMap[col] = val
	}
	setMap["updated_at"] = time.Now().UTC()

	q := r.Builder().
		Update(r.tableName).
		SetMap(setMap).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"is_deleted": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update fields: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update fields %s: %w", r.tableName, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}

	return nil
}

// --- List / Count / Exists ---

// List retrieves entities with filtering and pagination.
// An explicit caller condition on is_deleted takes precedence over the
// implicit visibility predicate and is never overridden.
func (r *Repo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q, err := r.filteredSelect(f)
	if err != nil {
		return result, err
	}

	// Count total (before pagination)
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// Count counts entities matching the filter.
func (r *Repo[T]) Count(ctx context.Context, f domain.ListFilter) (int64, error) {
	q, err := r.filteredSelect(f)
	if err != nil {
		return 0, err
	}

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	sql, args, err := countQ.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	return count, nil
}

// filteredSelect builds the SELECT shared by List and Count.
func (r *Repo[T]) filteredSelect(f domain.ListFilter) (squirrel.SelectBuilder, error) {
	q := r.baseSelect()

	if !filter.ConstrainsField(f.Conditions, "is_deleted") {
		q = applyVisibility(q, f.Visibility)
	}

	if f.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + f.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}

	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}

	if !id.IsNil(f.OrgID) {
		q = q.Where(squirrel.Eq{"org_id": f.OrgID})
	}

	if !id.IsNil(f.DeptID) {
		q = q.Where(squirrel.Eq{"dept_id": f.DeptID})
	}

	return r.applyConditions(q, f.Conditions)
}

// applyConditions applies caller-supplied filters to the query.
func (r *Repo[T]) applyConditions(q squirrel.SelectBuilder, items []filter.Item) (squirrel.SelectBuilder, error) {
	// Whitelist columns for SQL injection protection
	validCols := make(map[string]bool, len(r.selectCols))
	for _, col := range r.selectCols {
		validCols[col] = true
	}

	for _, item := range items {
		if !validCols[item.Field] {
			return q, fmt.Errorf("invalid filter column: %s", item.Field)
		}

		switch item.Operator {
		case filter.Equal:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotEqual:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{item.Field: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{item.Field: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{item.Field: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{item.Field: item.Value})
		case filter.InList:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotInList:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{item.Field: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{item.Field: nil})
		case filter.Contains:
			val := fmt.Sprintf("%%%v%%", item.Value)
			q = q.Where(squirrel.ILike{item.Field: val})
		case filter.NotContains:
			val := fmt.Sprintf("%%%v%%", item.Value)
			q = q.Where(squirrel.NotILike{item.Field: val})
		}
	}

	return q, nil
}

// Exists checks if a live entity with the given ID exists.
func (r *Repo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return r.exists(ctx, entityID, domain.ActiveOnly)
}

// ExistsAny checks existence regardless of tombstone state.
func (r *Repo[T]) ExistsAny(ctx context.Context, entityID id.ID) (bool, error) {
	return r.exists(ctx, entityID, domain.WithDeleted)
}

func (r *Repo[T]) exists(ctx context.Context, entityID id.ID, vis domain.Visibility) (bool, error) {
	q := applyVisibility(
		r.Builder().Select("1").From(r.tableName),
		vis,
	).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return true, nil
}

// whereSqlizer translates a domain.Where into squirrel predicates:
// plain values become equality (or IN) conditions, AtOrAfter values become
// lower bounds.
func whereSqlizer(where domain.Where) squirrel.Sqlizer {
	eq := squirrel.Eq{}
	and := squirrel.And{}
	for col, val := range where {
		if bound, ok := val.(domain.AtOrAfter); ok {
			and = append(and, squirrel.GtOrEq{col: bound.Value})
			continue
		}
		eq[col] = val
	}
	if len(eq) > 0 {
		and = append(and, eq)
	}
	return and
}

// FindWhere returns entities matching the conjunction, respecting visibility.
func (r *Repo[T]) FindWhere(ctx context.Context, where domain.Where, vis domain.Visibility) ([]T, error) {
	q := applyVisibility(r.baseSelect(), vis)
	if len(where) > 0 {
		q = q.Where(whereSqlizer(where))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find %s: %w", r.tableName, err)
	}

	return items, nil
}

// IDsWhere returns matching IDs ordered by id, starting after afterID.
// Bulk cascades page through results with this to bound memory.
func (r *Repo[T]) IDsWhere(ctx context.Context, where domain.Where, vis domain.Visibility, limit int, afterID id.ID) ([]id.ID, error) {
	q := applyVisibility(
		r.Builder().Select("id").From(r.tableName),
		vis,
	)
	if len(where) > 0 {
		q = q.Where(whereSqlizer(where))
	}
	if !id.IsNil(afterID) {
		q = q.Where(squirrel.Gt{"id": afterID})
	}
	q = q.OrderBy("id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("ids %s: %w", r.tableName, err)
	}

	return ids, nil
}

// parseOrderBy validates and normalizes the OrderBy clause.
func (r *Repo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if orderBy == "" {
		return "created_at DESC", nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}

	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}

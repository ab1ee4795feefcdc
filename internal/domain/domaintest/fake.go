// Package domaintest provides in-memory fakes for service and cascade
// tests: a generic repository recording every operation in order, and a
// configurable transaction checker.
package domaintest

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"taskhive/internal/core/apperror"
	coreentity "taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
)

// Entity is what the fake repository needs from a stored type.
type Entity interface {
	coreentity.Validatable
	GetID() id.ID
	Deleted() bool
	MarkDeleted(by *id.ID, at time.Time) error
	MarkRestored(by *id.ID, at time.Time) error
}

// TxChecker is a fake domain.TxChecker.
type TxChecker struct {
	Open bool
}

func (t *TxChecker) InTransaction(ctx context.Context) bool {
	return t.Open
}

// OpLog records operations across repositories so tests can assert
// cascade ordering.
type OpLog struct {
	Entries []string
}

// Add appends an entry.
func (l *OpLog) Add(format string, args ...any) {
	l.Entries = append(l.Entries, fmt.Sprintf(format, args...))
}

// Index returns the position of the first entry equal to s, or -1.
func (l *OpLog) Index(s string) int {
	for i, e := range l.Entries {
		if e == s {
			return i
		}
	}
	return -1
}

// FakeRepo is an in-memory domain.Repository. Where conditions are
// evaluated against the entities' "db"-tagged fields.
type FakeRepo[T Entity] struct {
	Entity string
	Items  map[id.ID]T
	Log    *OpLog

	// FailOn maps an operation name (softdelete, restore,
	// softdelete_where, restore_where, create, update) to an error
	// injected on the next call.
	FailOn map[string]error
}

// NewFakeRepo creates an empty fake repository sharing the given log.
func NewFakeRepo[T Entity](entityName string, log *OpLog) *FakeRepo[T] {
	return &FakeRepo[T]{
		Entity: entityName,
		Items:  make(map[id.ID]T),
		Log:    log,
		FailOn: make(map[string]error),
	}
}

// Put seeds an entity.
func (f *FakeRepo[T]) Put(e T) {
	f.Items[e.GetID()] = e
}

func (f *FakeRepo[T]) failIf(op string) error {
	if err, ok := f.FailOn[op]; ok {
		return err
	}
	return nil
}

// --- field matching ---

// fieldMap flattens an entity's db-tagged fields, embedded structs
// included.
func fieldMap(e any) map[string]any {
	out := make(map[string]any)
	collect(reflect.ValueOf(e), out)
	return out
}

func collect(v reflect.Value, out map[string]any) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			collect(v.Field(i), out)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		out[tag] = v.Field(i).Interface()
	}
}

func matches(e any, where domain.Where) bool {
	fields := fieldMap(e)
	for col, want := range where {
		got, ok := fields[col]
		if !ok {
			return false
		}
		if bound, isBound := want.(domain.AtOrAfter); isBound {
			if !atOrAfter(got, bound.Value) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// atOrAfter evaluates a lower-bound condition over time-valued fields.
func atOrAfter(got, bound any) bool {
	gt, ok := timeValue(got)
	if !ok {
		return false
	}
	bt, ok := timeValue(bound)
	if !ok {
		return false
	}
	return !gt.Before(bt)
}

func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

func visible(vis domain.Visibility, deleted bool) bool {
	switch vis {
	case domain.WithDeleted:
		return true
	case domain.DeletedOnly:
		return deleted
	default:
		return !deleted
	}
}

func (f *FakeRepo[T]) sortedIDs() []id.ID {
	ids := make([]id.ID, 0, len(f.Items))
	for itemID := range f.Items {
		ids = append(ids, itemID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// --- domain.Repository ---

func (f *FakeRepo[T]) Create(ctx context.Context, e T) error {
	if err := f.failIf("create"); err != nil {
		return err
	}
	if e.Deleted() {
		return apperror.NewSoftDeleteValidation("is_deleted")
	}
	f.Items[e.GetID()] = e
	f.Log.Add("create %s %s", f.Entity, e.GetID())
	return nil
}

func (f *FakeRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	var zero T
	e, ok := f.Items[entityID]
	if !ok || e.Deleted() {
		return zero, apperror.NewNotFound(f.Entity, entityID.String())
	}
	return e, nil
}

func (f *FakeRepo[T]) GetByIDAny(ctx context.Context, entityID id.ID) (T, error) {
	var zero T
	e, ok := f.Items[entityID]
	if !ok {
		return zero, apperror.NewNotFound(f.Entity, entityID.String())
	}
	return e, nil
}

func (f *FakeRepo[T]) Update(ctx context.Context, e T) error {
	if err := f.failIf("update"); err != nil {
		return err
	}
	cur, ok := f.Items[e.GetID()]
	if !ok {
		return apperror.NewNotFound(f.Entity, e.GetID().String())
	}
	if cur.Deleted() {
		return apperror.NewAlreadyDeleted(f.Entity, e.GetID())
	}
	f.Items[e.GetID()] = e
	f.Log.Add("update %s %s", f.Entity, e.GetID())
	return nil
}

func (f *FakeRepo[T]) UpdateFields(ctx context.Context, entityID id.ID, fields map[string]any) error {
	for col := range fields {
		if coreentity.IsGuardedColumn(col) {
			return apperror.NewSoftDeleteValidation(col)
		}
	}
	if e, ok := f.Items[entityID]; !ok || e.Deleted() {
		return apperror.NewNotFound(f.Entity, entityID.String())
	}
	f.Log.Add("update_fields %s %s", f.Entity, entityID)
	return nil
}

func (f *FakeRepo[T]) List(ctx context.Context, lf domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: lf.Limit, Offset: lf.Offset}
	for _, itemID := range f.sortedIDs() {
		e := f.Items[itemID]
		if !visible(lf.Visibility, e.Deleted()) {
			continue
		}
		result.Items = append(result.Items, e)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (f *FakeRepo[T]) Count(ctx context.Context, lf domain.ListFilter) (int64, error) {
	r, err := f.List(ctx, lf)
	return r.TotalCount, err
}

func (f *FakeRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	e, ok := f.Items[entityID]
	return ok && !e.Deleted(), nil
}

func (f *FakeRepo[T]) ExistsAny(ctx context.Context, entityID id.ID) (bool, error) {
	_, ok := f.Items[entityID]
	return ok, nil
}

func (f *FakeRepo[T]) FindWhere(ctx context.Context, where domain.Where, vis domain.Visibility) ([]T, error) {
	var out []T
	for _, itemID := range f.sortedIDs() {
		e := f.Items[itemID]
		if !visible(vis, e.Deleted()) || !matches(e, where) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *FakeRepo[T]) IDsWhere(ctx context.Context, where domain.Where, vis domain.Visibility, limit int, afterID id.ID) ([]id.ID, error) {
	var out []id.ID
	for _, itemID := range f.sortedIDs() {
		if !id.IsNil(afterID) && bytes.Compare(itemID[:], afterID[:]) <= 0 {
			continue
		}
		e := f.Items[itemID]
		if !visible(vis, e.Deleted()) || !matches(e, where) {
			continue
		}
		out = append(out, itemID)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *FakeRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	f.Log.Add("delete_attempt %s %s", f.Entity, entityID)
	return apperror.NewHardDeleteBlocked(f.Entity)
}

func (f *FakeRepo[T]) DeleteWhere(ctx context.Context, where domain.Where) error {
	f.Log.Add("delete_attempt %s", f.Entity)
	return apperror.NewHardDeleteBlocked(f.Entity)
}

func (f *FakeRepo[T]) SoftDelete(ctx context.Context, entityID id.ID, by *id.ID) error {
	if err := f.failIf("softdelete"); err != nil {
		return err
	}
	e, ok := f.Items[entityID]
	if !ok {
		return apperror.NewNotFound(f.Entity, entityID.String())
	}
	if e.Deleted() {
		return apperror.NewAlreadyDeleted(f.Entity, entityID)
	}
	if err := e.MarkDeleted(by, domain.StampNow(ctx)); err != nil {
		return err
	}
	f.Log.Add("softdelete %s %s", f.Entity, entityID)
	return nil
}

func (f *FakeRepo[T]) SoftDeleteWhere(ctx context.Context, where domain.Where, by *id.ID) (int64, error) {
	if err := f.failIf("softdelete_where"); err != nil {
		return 0, err
	}
	var n int64
	for _, itemID := range f.sortedIDs() {
		e := f.Items[itemID]
		if e.Deleted() || !matches(e, where) {
			continue
		}
		if err := e.MarkDeleted(by, domain.StampNow(ctx)); err != nil {
			return n, err
		}
		n++
	}
	f.Log.Add("softdelete_where %s", f.Entity)
	return n, nil
}

func (f *FakeRepo[T]) Restore(ctx context.Context, entityID id.ID, by *id.ID) error {
	if err := f.failIf("restore"); err != nil {
		return err
	}
	e, ok := f.Items[entityID]
	if !ok {
		return apperror.NewNotFound(f.Entity, entityID.String())
	}
	if !e.Deleted() {
		return apperror.NewNotDeleted(f.Entity, entityID)
	}
	if err := e.MarkRestored(by, time.Now().UTC()); err != nil {
		return err
	}
	f.Log.Add("restore %s %s", f.Entity, entityID)
	return nil
}

func (f *FakeRepo[T]) RestoreWhere(ctx context.Context, where domain.Where, by *id.ID) (int64, error) {
	if err := f.failIf("restore_where"); err != nil {
		return 0, err
	}
	var n int64
	for _, itemID := range f.sortedIDs() {
		e := f.Items[itemID]
		if !e.Deleted() || !matches(e, where) {
			continue
		}
		if err := e.MarkRestored(by, time.Now().UTC()); err != nil {
			return n, err
		}
		n++
	}
	f.Log.Add("restore_where %s", f.Entity)
	return n, nil
}

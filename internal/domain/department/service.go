package department

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
	"taskhive/pkg/logger"
)

// Repository is the storage contract for departments.
type Repository interface {
	domain.Repository[*Department]
}

// cascadeBatch bounds how many child IDs a cascade reads at a time.
const cascadeBatch = 100

// ScopedNet is one flat safety net applied during a department or
// organization cascade: everything matching the scope is bulk-tombstoned
// (or bulk-restored) in a fixed order.
type ScopedNet struct {
	Name  string
	Store domain.ScopedStore
}

// Service implements department operations. Deleting a department
// tombstones its users, cascades every task, then sweeps the remaining
// department-scoped records.
type Service struct {
	repo     Repository
	txc      domain.TxChecker
	users    domain.ScopedStore
	tasks    cascade.Cascader
	taskIDs  domain.IDLister
	nets     []ScopedNet // activities, comments, attachments, materials, notifications
	orgProbe refs.Prober
	recorder domain.TransitionRecorder
}

// NewService creates a department service. nets are applied in slice
// order; the caller fixes the topological order at wiring time.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	users domain.ScopedStore,
	tasks cascade.Cascader,
	taskIDs domain.IDLister,
	nets []ScopedNet,
	orgProbe refs.Prober,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:     repo,
		txc:      txc,
		users:    users,
		tasks:    tasks,
		taskIDs:  taskIDs,
		nets:     nets,
		orgProbe: orgProbe,
		recorder: recorder,
	}
}

// Create validates the organization reference, then inserts.
func (s *Service) Create(ctx context.Context, d *Department) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}

	if err := s.requireLiveOrg(ctx, d.OrgID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, d.ID, d.OrgID, d)
}

// Update validates and persists changes to a department.
func (s *Service) Update(ctx context.Context, d *Department) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return err
	}
	return s.recorder.RecordUpdated(ctx, EntityType, d.ID, d.OrgID, d)
}

// GetByID returns a live department.
func (s *Service) GetByID(ctx context.Context, deptID id.ID) (*Department, error) {
	return s.repo.GetByID(ctx, deptID)
}

// List returns departments matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Department], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the department and everything under it:
// users, then each task fully cascaded, then the flat department-scoped
// safety nets, then the department itself.
func (s *Service) SoftDeleteCascade(ctx context.Context, deptID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "department cascade delete"); err != nil {
		return err
	}
	ctx = domain.EnsureDeleteStamp(ctx)

	d, err := s.repo.GetByID(ctx, deptID)
	if err != nil {
		return err
	}

	by := appctx.ActingUser(ctx)
	scope := domain.Where{"dept_id": deptID}

	if _, err := s.users.SoftDeleteWhere(ctx, scope, by); err != nil {
		return err
	}

	if err := s.forEachTask(ctx, scope, domain.ActiveOnly, s.tasks.SoftDeleteCascade); err != nil {
		return err
	}

	for _, net := range s.nets {
		n, err := net.Store.SoftDeleteWhere(ctx, scope, by)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Debug(ctx, "department cascade swept stragglers",
				"dept_id", deptID, "net", net.Name, "count", n)
		}
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, deptID, d.OrgID, d); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, deptID, by)
}

// RestoreCascade restores the department after checking its organization
// is live, then restores everything under it: the department first, so
// child restores pass their parent gates. Only records tombstoned by the
// department's own cascade come back; anything deleted on its own before
// that, with an earlier deleted_at, stays tombstoned.
func (s *Service) RestoreCascade(ctx context.Context, deptID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "department cascade restore"); err != nil {
		return err
	}

	d, err := s.repo.GetByIDAny(ctx, deptID)
	if err != nil {
		return err
	}

	if err := s.requireLiveOrg(ctx, d.OrgID); err != nil {
		return err
	}

	by := appctx.ActingUser(ctx)
	scope := domain.Where{"dept_id": deptID}
	if d.DeletedAt != nil {
		scope["deleted_at"] = domain.AtOrAfter{Value: *d.DeletedAt}
	}

	if err := s.repo.Restore(ctx, deptID, by); err != nil {
		return err
	}

	if _, err := s.users.RestoreWhere(ctx, scope, by); err != nil {
		return err
	}

	if err := s.forEachTask(ctx, scope, domain.DeletedOnly, s.tasks.RestoreCascade); err != nil {
		return err
	}

	for _, net := range s.nets {
		if _, err := net.Store.RestoreWhere(ctx, scope, by); err != nil {
			return err
		}
	}

	return s.recorder.RecordRestored(ctx, EntityType, deptID, d.OrgID, d)
}

func (s *Service) requireLiveOrg(ctx context.Context, orgID id.ID) error {
	org, err := s.orgProbe(ctx, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return apperror.NewReferentialIntegrity("orgId", "organization does not exist or is deleted").
			WithDetail("id", orgID)
	}
	return nil
}

func (s *Service) forEachTask(
	ctx context.Context,
	where domain.Where,
	vis domain.Visibility,
	op func(context.Context, id.ID) error,
) error {
	after := id.Nil()
	for {
		ids, err := s.taskIDs.IDsWhere(ctx, where, vis, cascadeBatch, after)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		for _, taskID := range ids {
			if err := op(ctx, taskID); err != nil {
				return err
			}
		}
		after = ids[len(ids)-1]
	}
}

var _ cascade.Cascader = (*Service)(nil)

package organization

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/department"
	"taskhive/pkg/logger"
)

// Repository is the storage contract for organizations.
type Repository interface {
	domain.Repository[*Organization]

	// GetBySlug returns the live organization with the given slug.
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
}

// cascadeBatch bounds how many department IDs a cascade reads at a time.
const cascadeBatch = 100

// Service implements organization operations. Deleting an organization
// cascades every department, then sweeps the remaining org-scoped records
// with flat safety nets in a fixed order.
type Service struct {
	repo        Repository
	txc         domain.TxChecker
	departments cascade.Cascader
	deptIDs     domain.IDLister
	nets        []department.ScopedNet // users, tasks, activities, comments, attachments, materials, notifications, vendors
	recorder    domain.TransitionRecorder
}

// NewService creates an organization service. nets are applied in slice
// order; the caller fixes the topological order at wiring time.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	departments cascade.Cascader,
	deptIDs domain.IDLister,
	nets []department.ScopedNet,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:        repo,
		txc:         txc,
		departments: departments,
		deptIDs:     deptIDs,
		nets:        nets,
		recorder:    recorder,
	}
}

// Create validates slug uniqueness, then inserts.
func (s *Service) Create(ctx context.Context, o *Organization) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetBySlug(ctx, o.Slug)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperror.NewDuplicate(EntityType, "slug", o.Slug)
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, o.ID, o.ID, o)
}

// Update validates and persists changes to an organization.
// The platform flag is immutable after creation.
func (s *Service) Update(ctx context.Context, o *Organization) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	if current.IsPlatformOrg != o.IsPlatformOrg {
		return apperror.NewProtectedEntity(EntityType, o.ID).
			WithDetail("field", "isPlatformOrg")
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	return s.recorder.RecordUpdated(ctx, EntityType, o.ID, o.ID, o)
}

// GetByID returns a live organization.
func (s *Service) GetByID(ctx context.Context, orgID id.ID) (*Organization, error) {
	return s.repo.GetByID(ctx, orgID)
}

// List returns organizations matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Organization], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones an entire tenant: every department fully
// cascaded, then the flat org-scoped safety nets, then the organization
// itself. The platform organization is refused before anything is touched.
func (s *Service) SoftDeleteCascade(ctx context.Context, orgID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "organization cascade delete"); err != nil {
		return err
	}
	ctx = domain.EnsureDeleteStamp(ctx)

	o, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if o.IsPlatformOrg {
		return apperror.NewProtectedEntity(EntityType, orgID)
	}

	if err := s.forEachDept(ctx, domain.Where{"org_id": orgID}, domain.ActiveOnly, s.departments.SoftDeleteCascade); err != nil {
		return err
	}

	by := appctx.ActingUser(ctx)
	scope := domain.Where{"org_id": orgID}

	for _, net := range s.nets {
		n, err := net.Store.SoftDeleteWhere(ctx, scope, by)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Debug(ctx, "organization cascade swept stragglers",
				"org_id", orgID, "net", net.Name, "count", n)
		}
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, orgID, orgID, o); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, orgID, by)
}

// RestoreCascade restores the tenant: the organization first, then every
// department fully cascaded, then the flat safety nets. Records tombstoned
// before the organization's own cascade stay tombstoned.
func (s *Service) RestoreCascade(ctx context.Context, orgID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "organization cascade restore"); err != nil {
		return err
	}

	o, err := s.repo.GetByIDAny(ctx, orgID)
	if err != nil {
		return err
	}

	scope := domain.Where{"org_id": orgID}
	if o.DeletedAt != nil {
		scope["deleted_at"] = domain.AtOrAfter{Value: *o.DeletedAt}
	}

	by := appctx.ActingUser(ctx)
	if err := s.repo.Restore(ctx, orgID, by); err != nil {
		return err
	}

	if err := s.forEachDept(ctx, scope, domain.DeletedOnly, s.departments.RestoreCascade); err != nil {
		return err
	}

	for _, net := range s.nets {
		if _, err := net.Store.RestoreWhere(ctx, scope, by); err != nil {
			return err
		}
	}

	return s.recorder.RecordRestored(ctx, EntityType, orgID, orgID, o)
}

func (s *Service) forEachDept(
	ctx context.Context,
	where domain.Where,
	vis domain.Visibility,
	op func(context.Context, id.ID) error,
) error {
	after := id.Nil()
	for {
		ids, err := s.deptIDs.IDsWhere(ctx, where, vis, cascadeBatch, after)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		for _, deptID := range ids {
			if err := op(ctx, deptID); err != nil {
				return err
			}
		}
		after = ids[len(ids)-1]
	}
}

var _ cascade.Cascader = (*Service)(nil)

package user

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
)

// Repository is the storage contract for users.
type Repository interface {
	domain.Repository[*User]

	// GetByEmail returns the live user with the given email, org-wide.
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Service implements user operations. Users are leaves of the cascade
// graph.
type Service struct {
	repo      Repository
	txc       domain.TxChecker
	deptProbe refs.Prober
	recorder  domain.TransitionRecorder
}

// NewService creates a user service.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	deptProbe refs.Prober,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:      repo,
		txc:       txc,
		deptProbe: deptProbe,
		recorder:  recorder,
	}
}

// Create validates the department and email uniqueness, then inserts.
func (s *Service) Create(ctx context.Context, u *User) error {
	if err := u.Validate(ctx); err != nil {
		return err
	}
	if err := refs.ValidateDeptInOrg(ctx, s.deptProbe, u.DeptID, u.OrgID); err != nil {
		return err
	}

	existing, err := s.repo.GetByEmail(ctx, u.Email)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperror.NewDuplicate(EntityType, "email", u.Email)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, u.ID, u.OrgID, u)
}

// Update validates and persists changes to a user.
func (s *Service) Update(ctx context.Context, u *User) error {
	if err := u.Validate(ctx); err != nil {
		return err
	}
	if err := refs.ValidateDeptInOrg(ctx, s.deptProbe, u.DeptID, u.OrgID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	return s.recorder.RecordUpdated(ctx, EntityType, u.ID, u.OrgID, u)
}

// GetByID returns a live user.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// GetByEmail returns a live user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// List returns users matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*User], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the user.
func (s *Service) SoftDeleteCascade(ctx context.Context, userID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "user cascade delete"); err != nil {
		return err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, userID, u.OrgID, u); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, userID, appctx.ActingUser(ctx))
}

// RestoreCascade restores the user after checking the department is live.
func (s *Service) RestoreCascade(ctx context.Context, userID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "user cascade restore"); err != nil {
		return err
	}

	u, err := s.repo.GetByIDAny(ctx, userID)
	if err != nil {
		return err
	}

	if err := refs.ValidateDeptInOrg(ctx, s.deptProbe, u.DeptID, u.OrgID); err != nil {
		return err
	}

	if err := s.repo.Restore(ctx, userID, appctx.ActingUser(ctx)); err != nil {
		return err
	}

	return s.recorder.RecordRestored(ctx, EntityType, userID, u.OrgID, u)
}

var _ cascade.Cascader = (*Service)(nil)

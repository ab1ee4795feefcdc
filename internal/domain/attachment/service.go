package attachment

import (
	"context"

	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
)

// Repository is the storage contract for attachments.
type Repository interface {
	domain.Repository[*Attachment]
}

// Service implements attachment operations. Attachments are leaves of the
// cascade graph: deleting one touches nothing else.
type Service struct {
	repo     Repository
	txc      domain.TxChecker
	resolver *refs.Resolver
	users    refs.UserProber
	recorder domain.TransitionRecorder
}

// NewService creates an attachment service.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	resolver *refs.Resolver,
	users refs.UserProber,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:     repo,
		txc:      txc,
		resolver: resolver,
		users:    users,
		recorder: recorder,
	}
}

// Create validates the parent reference and uploader, then inserts.
func (s *Service) Create(ctx context.Context, a *Attachment) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	if _, err := refs.ValidateParent(ctx, s.resolver, "parentId", a.ParentType, a.ParentID, a.OrgID, ParentTypes); err != nil {
		return err
	}
	if err := refs.ValidateActor(ctx, s.users, "uploadedBy", a.UploadedBy, a.OrgID, id.Nil()); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, a.ID, a.OrgID, a)
}

// GetByID returns a live attachment.
func (s *Service) GetByID(ctx context.Context, attachmentID id.ID) (*Attachment, error) {
	return s.repo.GetByID(ctx, attachmentID)
}

// List returns attachments matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Attachment], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the attachment.
func (s *Service) SoftDeleteCascade(ctx context.Context, attachmentID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "attachment cascade delete"); err != nil {
		return err
	}

	a, err := s.repo.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, attachmentID, a.OrgID, a); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, attachmentID, appctx.ActingUser(ctx))
}

// RestoreCascade restores the attachment after checking its parent is live.
func (s *Service) RestoreCascade(ctx context.Context, attachmentID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "attachment cascade restore"); err != nil {
		return err
	}

	a, err := s.repo.GetByIDAny(ctx, attachmentID)
	if err != nil {
		return err
	}

	// A live attachment may not reference a dead parent.
	if _, err := s.resolver.Resolve(ctx, "parentId", a.ParentType, a.ParentID); err != nil {
		return err
	}

	if err := s.repo.Restore(ctx, attachmentID, appctx.ActingUser(ctx)); err != nil {
		return err
	}

	return s.recorder.RecordRestored(ctx, EntityType, attachmentID, a.OrgID, a)
}

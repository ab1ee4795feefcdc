package notification

import (
	"context"

	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
)

// Repository is the storage contract for notifications.
type Repository interface {
	domain.Repository[*Notification]
}

// Service implements notification operations.
type Service struct {
	repo     Repository
	txc      domain.TxChecker
	resolver *refs.Resolver
	users    refs.UserProber
	recorder domain.TransitionRecorder
}

// NewService creates a notification service.
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

// Create validates the target and recipients, then inserts.
func (s *Service) Create(ctx context.Context, n *Notification) error {
	if err := n.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.resolver.Resolve(ctx, "targetId", n.TargetType, n.TargetID); err != nil {
		return err
	}
	if err := refs.ValidateUserList(ctx, s.users, n.Recipients, refs.ListOptions{
		Field:   "recipients",
		OrgID:   n.OrgID,
		MaxSize: refs.MaxRecipients,
	}); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, n.ID, n.OrgID, n)
}

// MarkRead records that a user has read the notification.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID id.ID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.ReadBy.Contains(userID) {
		return nil
	}
	n.ReadBy = append(n.ReadBy, userID)
	return s.repo.UpdateFields(ctx, notificationID, map[string]any{"read_by": n.ReadBy})
}

// List returns notifications matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Notification], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the notification (a leaf of the graph).
func (s *Service) SoftDeleteCascade(ctx context.Context, notificationID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "notification cascade delete"); err != nil {
		return err
	}

	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, notificationID, n.OrgID, n); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, notificationID, appctx.ActingUser(ctx))
}

// RestoreCascade restores the notification after checking its target is live.
func (s *Service) RestoreCascade(ctx context.Context, notificationID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "notification cascade restore"); err != nil {
		return err
	}

	n, err := s.repo.GetByIDAny(ctx, notificationID)
	if err != nil {
		return err
	}

	if _, err := s.resolver.Resolve(ctx, "targetId", n.TargetType, n.TargetID); err != nil {
		return err
	}

	if err := s.repo.Restore(ctx, notificationID, appctx.ActingUser(ctx)); err != nil {
		return err
	}

	return s.recorder.RecordRestored(ctx, EntityType, notificationID, n.OrgID, n)
}

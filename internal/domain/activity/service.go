package activity

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
)

// Repository is the storage contract for activities.
type Repository interface {
	domain.Repository[*Activity]
}

// cascadeBatch bounds how many child IDs a cascade reads at a time.
const cascadeBatch = 200

// Service implements activity operations. An activity cascades to the
// comments and attachments hanging off it.
type Service struct {
	repo        Repository
	txc         domain.TxChecker
	comments    cascade.Cascader
	commentIDs  domain.IDLister
	attachments domain.ScopedStore
	taskProbe   refs.Prober
	matProbe    refs.Prober
	users       refs.UserProber
	recorder    domain.TransitionRecorder
}

// NewService creates an activity service.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	comments cascade.Cascader,
	commentIDs domain.IDLister,
	attachments domain.ScopedStore,
	taskProbe refs.Prober,
	matProbe refs.Prober,
	users refs.UserProber,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:        repo,
		txc:         txc,
		comments:    comments,
		commentIDs:  commentIDs,
		attachments: attachments,
		taskProbe:   taskProbe,
		matProbe:    matProbe,
		users:       users,
		recorder:    recorder,
	}
}

// Create validates the task reference, actor, and material line items,
// then inserts.
func (s *Service) Create(ctx context.Context, a *Activity) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	if err := s.validateRefs(ctx, a); err != nil {
		return err
	}

	a.RecomputeTotal()
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, a.ID, a.OrgID, a)
}

// Update validates and persists changes to an activity.
func (s *Service) Update(ctx context.Context, a *Activity) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	if err := s.validateRefs(ctx, a); err != nil {
		return err
	}

	a.RecomputeTotal()
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	return s.recorder.RecordUpdated(ctx, EntityType, a.ID, a.OrgID, a)
}

func (s *Service) validateRefs(ctx context.Context, a *Activity) error {
	task, err := s.taskProbe(ctx, a.TaskID)
	if err != nil {
		return err
	}
	if task == nil {
		return refErr("taskId", a.TaskID)
	}
	if task.OrgID != a.OrgID || task.DeptID != a.DeptID {
		return refErr("taskId", a.TaskID)
	}

	if err := refs.ValidateActor(ctx, s.users, "addedBy", a.AddedBy, a.OrgID, a.DeptID); err != nil {
		return err
	}

	for _, u := range a.Materials {
		m, err := s.matProbe(ctx, u.MaterialID)
		if err != nil {
			return err
		}
		if m == nil || m.OrgID != a.OrgID {
			return refErr("materials", u.MaterialID)
		}
	}

	return nil
}

// GetByID returns a live activity.
func (s *Service) GetByID(ctx context.Context, activityID id.ID) (*Activity, error) {
	return s.repo.GetByID(ctx, activityID)
}

// List returns activities matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Activity], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the activity's attachments and comment
// threads, then the activity itself.
func (s *Service) SoftDeleteCascade(ctx context.Context, activityID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "activity cascade delete"); err != nil {
		return err
	}
	ctx = domain.EnsureDeleteStamp(ctx)

	a, err := s.repo.GetByID(ctx, activityID)
	if err != nil {
		return err
	}

	by := appctx.ActingUser(ctx)
	if _, err := s.attachments.SoftDeleteWhere(ctx, domain.Where{
		"parent_type": EntityType,
		"parent_id":   activityID,
	}, by); err != nil {
		return err
	}

	if err := s.cascadeComments(ctx, domain.Where{
		"parent_type": EntityType,
		"parent_id":   activityID,
	}, s.comments.SoftDeleteCascade, domain.ActiveOnly); err != nil {
		return err
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, activityID, a.OrgID, a); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, activityID, by)
}

// RestoreCascade restores the activity after checking its task is live,
// then restores its comments and attachments. Children tombstoned before
// the activity's own cascade stay tombstoned.
func (s *Service) RestoreCascade(ctx context.Context, activityID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "activity cascade restore"); err != nil {
		return err
	}

	a, err := s.repo.GetByIDAny(ctx, activityID)
	if err != nil {
		return err
	}

	task, err := s.taskProbe(ctx, a.TaskID)
	if err != nil {
		return err
	}
	if task == nil {
		return refErr("taskId", a.TaskID)
	}

	childScope := domain.Where{"parent_type": EntityType, "parent_id": activityID}
	if a.DeletedAt != nil {
		childScope["deleted_at"] = domain.AtOrAfter{Value: *a.DeletedAt}
	}

	by := appctx.ActingUser(ctx)
	if err := s.repo.Restore(ctx, activityID, by); err != nil {
		return err
	}

	if err := s.cascadeComments(ctx, childScope, s.comments.RestoreCascade, domain.DeletedOnly); err != nil {
		return err
	}

	if _, err := s.attachments.RestoreWhere(ctx, childScope, by); err != nil {
		return err
	}

	return s.recorder.RecordRestored(ctx, EntityType, activityID, a.OrgID, a)
}

// cascadeComments applies op to every comment parented on this activity.
func (s *Service) cascadeComments(
	ctx context.Context,
	where domain.Where,
	op func(context.Context, id.ID) error,
	vis domain.Visibility,
) error {
	after := id.Nil()
	for {
		ids, err := s.commentIDs.IDsWhere(ctx, where, vis, cascadeBatch, after)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		for _, commentID := range ids {
			if err := op(ctx, commentID); err != nil {
				return err
			}
		}
		after = ids[len(ids)-1]
	}
}

func refErr(field string, entityID id.ID) error {
	return apperror.NewReferentialIntegrity(field, "referenced record does not exist, is deleted, or belongs to a different tenant").
		WithDetail("id", entityID)
}

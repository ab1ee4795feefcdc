package task

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
)

// Repository is the storage contract for tasks.
type Repository interface {
	domain.Repository[*Task]
}

// cascadeBatch bounds how many child IDs a cascade reads at a time.
const cascadeBatch = 200

// Service implements task operations. A task cascades to its activities
// (each fully cascaded), the comments parented on it, its attachments,
// and the notifications targeting it.
type Service struct {
	repo          Repository
	txc           domain.TxChecker
	activities    cascade.Cascader
	activityIDs   domain.IDLister
	comments      cascade.Cascader
	commentIDs    domain.IDLister
	attachments   domain.ScopedStore
	notifications domain.ScopedStore
	deptProbe     refs.Prober
	vendorProbe   refs.Prober
	matProbe      refs.Prober
	users         refs.UserProber
	recorder      domain.TransitionRecorder
}

// NewService creates a task service.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	activities cascade.Cascader,
	activityIDs domain.IDLister,
	comments cascade.Cascader,
	commentIDs domain.IDLister,
	attachments domain.ScopedStore,
	notifications domain.ScopedStore,
	deptProbe refs.Prober,
	vendorProbe refs.Prober,
	matProbe refs.Prober,
	users refs.UserProber,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:          repo,
		txc:           txc,
		activities:    activities,
		activityIDs:   activityIDs,
		comments:      comments,
		commentIDs:    commentIDs,
		attachments:   attachments,
		notifications: notifications,
		deptProbe:     deptProbe,
		vendorProbe:   vendorProbe,
		matProbe:      matProbe,
		users:         users,
		recorder:      recorder,
	}
}

// Create validates all foreign-key-shaped fields, then inserts.
func (s *Service) Create(ctx context.Context, t *Task) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}
	if err := s.validateRefs(ctx, t); err != nil {
		return err
	}

	t.RecomputeTotal()
	if err := s.repo.Create(ctx, t); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, t.ID, t.OrgID, t)
}

// Update validates and persists changes to a task.
func (s *Service) Update(ctx context.Context, t *Task) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}
	if err := s.validateRefs(ctx, t); err != nil {
		return err
	}

	t.RecomputeTotal()
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}
	return s.recorder.RecordUpdated(ctx, EntityType, t.ID, t.OrgID, t)
}

func (s *Service) validateRefs(ctx context.Context, t *Task) error {
	if err := refs.ValidateDeptInOrg(ctx, s.deptProbe, t.DeptID, t.OrgID); err != nil {
		return err
	}
	if err := refs.ValidateActor(ctx, s.users, "createdBy", t.CreatedBy, t.OrgID, t.DeptID); err != nil {
		return err
	}
	if err := refs.ValidateUserList(ctx, s.users, t.Assignees, refs.ListOptions{
		Field:   "assignees",
		OrgID:   t.OrgID,
		MaxSize: refs.MaxAssignees,
	}); err != nil {
		return err
	}
	if err := refs.ValidateUserList(ctx, s.users, t.Watchers, refs.ListOptions{
		Field:   "watchers",
		OrgID:   t.OrgID,
		MaxSize: refs.MaxWatchers,
		HODOnly: true,
	}); err != nil {
		return err
	}

	if t.Kind == KindProject && t.VendorID != nil {
		v, err := s.vendorProbe(ctx, *t.VendorID)
		if err != nil {
			return err
		}
		if v == nil || v.OrgID != t.OrgID {
			return apperror.NewReferentialIntegrity("vendorId",
				"vendor does not exist, is deleted, or belongs to a different organization").
				WithDetail("id", *t.VendorID)
		}
	}

	for _, u := range t.Materials {
		m, err := s.matProbe(ctx, u.MaterialID)
		if err != nil {
			return err
		}
		if m == nil || m.OrgID != t.OrgID {
			return apperror.NewReferentialIntegrity("materials",
				"material does not exist, is deleted, or belongs to a different organization").
				WithDetail("id", u.MaterialID)
		}
	}

	return nil
}

// GetByID returns a live task.
func (s *Service) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	return s.repo.GetByID(ctx, taskID)
}

// List returns tasks matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Task], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the task and everything referencing it:
// activities first (each fully cascaded, which covers their comments and
// attachments), then comments parented on the task, then attachments and
// notifications, then the task itself.
func (s *Service) SoftDeleteCascade(ctx context.Context, taskID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "task cascade delete"); err != nil {
		return err
	}
	ctx = domain.EnsureDeleteStamp(ctx)

	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.forEachChild(ctx, s.activityIDs, domain.Where{"task_id": taskID},
		domain.ActiveOnly, s.activities.SoftDeleteCascade); err != nil {
		return err
	}

	if err := s.forEachChild(ctx, s.commentIDs, domain.Where{
		"parent_type": EntityType,
		"parent_id":   taskID,
	}, domain.ActiveOnly, s.comments.SoftDeleteCascade); err != nil {
		return err
	}

	by := appctx.ActingUser(ctx)
	if _, err := s.attachments.SoftDeleteWhere(ctx, domain.Where{
		"parent_type": EntityType,
		"parent_id":   taskID,
	}, by); err != nil {
		return err
	}
	if _, err := s.notifications.SoftDeleteWhere(ctx, domain.Where{
		"target_type": EntityType,
		"target_id":   taskID,
	}, by); err != nil {
		return err
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, taskID, t.OrgID, t); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, taskID, by)
}

// RestoreCascade restores the task after checking its department is live,
// then restores its descendants. Descendants tombstoned before the task's
// own cascade stay tombstoned.
func (s *Service) RestoreCascade(ctx context.Context, taskID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "task cascade restore"); err != nil {
		return err
	}

	t, err := s.repo.GetByIDAny(ctx, taskID)
	if err != nil {
		return err
	}

	if err := refs.ValidateDeptInOrg(ctx, s.deptProbe, t.DeptID, t.OrgID); err != nil {
		return err
	}

	activityScope := domain.Where{"task_id": taskID}
	childScope := domain.Where{"parent_type": EntityType, "parent_id": taskID}
	targetScope := domain.Where{"target_type": EntityType, "target_id": taskID}
	if t.DeletedAt != nil {
		bound := domain.AtOrAfter{Value: *t.DeletedAt}
		activityScope["deleted_at"] = bound
		childScope["deleted_at"] = bound
		targetScope["deleted_at"] = bound
	}

	by := appctx.ActingUser(ctx)
	if err := s.repo.Restore(ctx, taskID, by); err != nil {
		return err
	}

	if err := s.forEachChild(ctx, s.activityIDs, activityScope,
		domain.DeletedOnly, s.activities.RestoreCascade); err != nil {
		return err
	}

	if err := s.forEachChild(ctx, s.commentIDs, childScope,
		domain.DeletedOnly, s.comments.RestoreCascade); err != nil {
		return err
	}

	if _, err := s.attachments.RestoreWhere(ctx, childScope, by); err != nil {
		return err
	}
	if _, err := s.notifications.RestoreWhere(ctx, targetScope, by); err != nil {
		return err
	}

	return s.recorder.RecordRestored(ctx, EntityType, taskID, t.OrgID, t)
}

// forEachChild pages child IDs in stable order and applies op to each.
func (s *Service) forEachChild(
	ctx context.Context,
	lister domain.IDLister,
	where domain.Where,
	vis domain.Visibility,
	op func(context.Context, id.ID) error,
) error {
	after := id.Nil()
	for {
		ids, err := lister.IDsWhere(ctx, where, vis, cascadeBatch, after)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		for _, childID := range ids {
			if err := op(ctx, childID); err != nil {
				return err
			}
		}
		after = ids[len(ids)-1]
	}
}

var _ cascade.Cascader = (*Service)(nil)

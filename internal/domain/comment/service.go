package comment

import (
	"context"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/refs"
)

// Repository is the storage contract for comments.
type Repository interface {
	domain.Repository[*Comment]
}

// cascadeBatch bounds how many child IDs a cascade reads at a time.
const cascadeBatch = 200

// Service implements comment operations, including the recursive thread
// cascade: deleting a comment tombstones its replies depth-first.
type Service struct {
	repo        Repository
	txc         domain.TxChecker
	attachments domain.ScopedStore
	resolver    *refs.Resolver
	users       refs.UserProber
	recorder    domain.TransitionRecorder
}

// NewService creates a comment service.
func NewService(
	repo Repository,
	txc domain.TxChecker,
	attachments domain.ScopedStore,
	resolver *refs.Resolver,
	users refs.UserProber,
	recorder domain.TransitionRecorder,
) *Service {
	return &Service{
		repo:        repo,
		txc:         txc,
		attachments: attachments,
		resolver:    resolver,
		users:       users,
		recorder:    recorder,
	}
}

// ThreadFetcher adapts the repository for the thread-depth walk.
func (s *Service) ThreadFetcher() refs.ThreadFetcher {
	return func(ctx context.Context, commentID id.ID) (*refs.ThreadNode, error) {
		c, err := s.repo.GetByID(ctx, commentID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.ThreadNode{ID: c.ID, ParentType: c.ParentType, ParentID: c.ParentID}, nil
	}
}

// Create validates the parent, thread depth, author, and mentions, then
// inserts.
func (s *Service) Create(ctx context.Context, c *Comment) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if _, err := refs.ValidateParent(ctx, s.resolver, "parentId", c.ParentType, c.ParentID, c.OrgID, ParentTypes); err != nil {
		return err
	}
	if c.ParentType == EntityType {
		if err := refs.ValidateThread(ctx, s.ThreadFetcher(), c.ParentID); err != nil {
			return err
		}
	}
	if err := refs.ValidateActor(ctx, s.users, "authorId", c.AuthorID, c.OrgID, id.Nil()); err != nil {
		return err
	}
	if err := refs.ValidateUserList(ctx, s.users, c.Mentions, refs.ListOptions{
		Field:   "mentions",
		OrgID:   c.OrgID,
		MaxSize: refs.MaxMentions,
	}); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	return s.recorder.RecordCreated(ctx, EntityType, c.ID, c.OrgID, c)
}

// Update validates and persists an edited comment body/mentions.
func (s *Service) Update(ctx context.Context, c *Comment) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := refs.ValidateUserList(ctx, s.users, c.Mentions, refs.ListOptions{
		Field:   "mentions",
		OrgID:   c.OrgID,
		MaxSize: refs.MaxMentions,
	}); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	return s.recorder.RecordUpdated(ctx, EntityType, c.ID, c.OrgID, c)
}

// GetByID returns a live comment.
func (s *Service) GetByID(ctx context.Context, commentID id.ID) (*Comment, error) {
	return s.repo.GetByID(ctx, commentID)
}

// List returns comments matching the filter.
func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*Comment], error) {
	return s.repo.List(ctx, f)
}

// SoftDeleteCascade tombstones the comment, its reply thread depth-first,
// and its attachments. Children are fully tombstoned before the comment
// itself.
func (s *Service) SoftDeleteCascade(ctx context.Context, commentID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "comment cascade delete"); err != nil {
		return err
	}
	ctx = domain.EnsureDeleteStamp(ctx)

	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if err := s.cascadeReplies(ctx, domain.Where{
		"parent_type": EntityType,
		"parent_id":   commentID,
	}, s.SoftDeleteCascade, domain.ActiveOnly); err != nil {
		return err
	}

	by := appctx.ActingUser(ctx)
	if _, err := s.attachments.SoftDeleteWhere(ctx, domain.Where{
		"parent_type": EntityType,
		"parent_id":   commentID,
	}, by); err != nil {
		return err
	}

	if err := s.recorder.RecordDeleted(ctx, EntityType, commentID, c.OrgID, c); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, commentID, by)
}

// RestoreCascade restores the comment after checking its parent is live,
// then restores its reply thread and attachments. Replies tombstoned
// before the comment's own cascade stay tombstoned.
func (s *Service) RestoreCascade(ctx context.Context, commentID id.ID) error {
	if err := cascade.RequireTx(ctx, s.txc, "comment cascade restore"); err != nil {
		return err
	}

	c, err := s.repo.GetByIDAny(ctx, commentID)
	if err != nil {
		return err
	}

	// A live comment may not reference a dead parent.
	if _, err := s.resolver.Resolve(ctx, "parentId", c.ParentType, c.ParentID); err != nil {
		return err
	}

	childScope := domain.Where{"parent_type": EntityType, "parent_id": commentID}
	if c.DeletedAt != nil {
		childScope["deleted_at"] = domain.AtOrAfter{Value: *c.DeletedAt}
	}

	by := appctx.ActingUser(ctx)
	if err := s.repo.Restore(ctx, commentID, by); err != nil {
		return err
	}

	if err := s.cascadeReplies(ctx, childScope, s.RestoreCascade, domain.DeletedOnly); err != nil {
		return err
	}

	if _, err := s.attachments.RestoreWhere(ctx, childScope, by); err != nil {
		return err
	}

	return s.recorder.RecordRestored(ctx, EntityType, commentID, c.OrgID, c)
}

// cascadeReplies applies op to every direct reply, batched.
func (s *Service) cascadeReplies(
	ctx context.Context,
	where domain.Where,
	op func(context.Context, id.ID) error,
	vis domain.Visibility,
) error {
	after := id.Nil()
	for {
		ids, err := s.repo.IDsWhere(ctx, where, vis, cascadeBatch, after)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		for _, replyID := range ids {
			if err := op(ctx, replyID); err != nil {
				return err
			}
		}
		after = ids[len(ids)-1]
	}
}

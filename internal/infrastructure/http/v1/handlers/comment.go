package handlers

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/comment"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// CommentHandler handles HTTP requests for threaded comments.
type CommentHandler = EntityHandler[
	*comment.Comment,
	dto.CreateCommentRequest,
	dto.UpdateCommentRequest,
]

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(
	base *BaseHandler,
	service *comment.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*comment.Comment, error),
) *CommentHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*comment.Comment,
		dto.CreateCommentRequest,
		dto.UpdateCommentRequest,
	]{
		Service:  service,
		Resource: security.ResourceComment,
		Tx:       txm,
		FetchAny: fetchAny,

		MapCreate: func(req dto.CreateCommentRequest, actorID id.ID) (*comment.Comment, error) {
			return req.ToEntity(actorID), nil
		},
		MapUpdate: func(req dto.UpdateCommentRequest, existing *comment.Comment) {
			req.ApplyTo(existing)
		},
		Scope: func(cm *comment.Comment) security.Scope {
			return security.Scope{OrgID: cm.OrgID, DeptID: cm.DeptID}
		},
	})
}

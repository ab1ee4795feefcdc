package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/comment"
)

// CreateCommentRequest is the request body for posting a comment. The
// parent is polymorphic: a task, an activity, or another comment.
type CreateCommentRequest struct {
	OrgID      id.ID        `json:"orgId" binding:"required"`
	DeptID     id.ID        `json:"deptId" binding:"required"`
	ParentType string       `json:"parentType" binding:"required"`
	ParentID   id.ID        `json:"parentId" binding:"required"`
	Body       string       `json:"body" binding:"required"`
	Mentions   types.IDList `json:"mentions"`
}

// ToEntity converts DTO to domain entity with actorID as the author.
func (r *CreateCommentRequest) ToEntity(actorID id.ID) *comment.Comment {
	return &comment.Comment{
		Base: entity.NewBase(),
		DeptScoped: entity.DeptScoped{
			TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
			DeptID:       r.DeptID,
		},
		AuthorID:   actorID,
		Body:       r.Body,
		Mentions:   r.Mentions,
		ParentType: r.ParentType,
		ParentID:   r.ParentID,
	}
}

// UpdateCommentRequest is the request body for editing a comment.
type UpdateCommentRequest struct {
	Body     string       `json:"body" binding:"required"`
	Mentions types.IDList `json:"mentions"`
	Version  int          `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity. The parent is immutable.
func (r *UpdateCommentRequest) ApplyTo(c *comment.Comment) {
	c.Body = r.Body
	c.Mentions = r.Mentions
	c.Version = r.Version
}

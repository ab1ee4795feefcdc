// Package comment holds threaded task comments. A comment's parent is
// polymorphic: a task, an activity, or another comment (forming a thread).
package comment

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
)

// EntityType is the discriminator for polymorphic references and the
// cascade registry.
const EntityType = "comment"

// ParentTypes a comment may attach to.
var ParentTypes = []string{"task", "activity", "comment"}

// Comment is one entry in a task discussion thread.
type Comment struct {
	entity.Base
	entity.DeptScoped

	AuthorID   id.ID        `db:"author_id" json:"authorId"`
	Body       string       `db:"body" json:"body"`
	Mentions   types.IDList `db:"mentions" json:"mentions"`
	ParentType string       `db:"parent_type" json:"parentType"`
	ParentID   id.ID        `db:"parent_id" json:"parentId"`
}

// Validate implements entity.Validatable.
func (c *Comment) Validate(ctx context.Context) error {
	if c.Body == "" {
		return apperror.NewValidation("comment body is required")
	}

	valid := false
	for _, t := range ParentTypes {
		if c.ParentType == t {
			valid = true
			break
		}
	}
	if !valid {
		return apperror.NewValidation("invalid parent type").WithDetail("parentType", c.ParentType)
	}
	if id.IsNil(c.ParentID) {
		return apperror.NewValidation("parent id is required")
	}

	return nil
}

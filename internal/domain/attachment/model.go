// Package attachment holds file attachments, polymorphic children of
// tasks, activities, and comments.
package attachment

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
)

// EntityType is the discriminator for polymorphic references and the
// cascade registry.
const EntityType = "attachment"

// ParentTypes an attachment may hang off.
var ParentTypes = []string{"task", "activity", "comment"}

// Attachment is file metadata; the bytes live in external storage keyed
// by StorageKey.
type Attachment struct {
	entity.Base
	entity.DeptScoped

	ParentType  string `db:"parent_type" json:"parentType"`
	ParentID    id.ID  `db:"parent_id" json:"parentId"`
	FileName    string `db:"file_name" json:"fileName"`
	ContentType string `db:"content_type" json:"contentType"`
	Size        int64  `db:"size" json:"size"`
	StorageKey  string `db:"storage_key" json:"storageKey"`
	UploadedBy  id.ID  `db:"uploaded_by" json:"uploadedBy"`
}

// Validate implements entity.Validatable.
func (a *Attachment) Validate(ctx context.Context) error {
	if a.FileName == "" {
		return apperror.NewValidation("file name is required")
	}
	if a.StorageKey == "" {
		return apperror.NewValidation("storage key is required")
	}
	if a.Size < 0 {
		return apperror.NewValidation("size cannot be negative")
	}

	valid := false
	for _, t := range ParentTypes {
		if a.ParentType == t {
			valid = true
			break
		}
	}
	if !valid {
		return apperror.NewValidation("invalid parent type").WithDetail("parentType", a.ParentType)
	}
	if id.IsNil(a.ParentID) {
		return apperror.NewValidation("parent id is required")
	}

	return nil
}

package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/attachment"
)

// CreateAttachmentRequest is the request body for registering an uploaded
// file. The bytes already live in external storage under StorageKey.
type CreateAttachmentRequest struct {
	OrgID       id.ID  `json:"orgId" binding:"required"`
	DeptID      id.ID  `json:"deptId" binding:"required"`
	ParentType  string `json:"parentType" binding:"required"`
	ParentID    id.ID  `json:"parentId" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size" binding:"min=0"`
	StorageKey  string `json:"storageKey" binding:"required"`
}

// ToEntity converts DTO to domain entity with actorID as the uploader.
func (r *CreateAttachmentRequest) ToEntity(actorID id.ID) *attachment.Attachment {
	return &attachment.Attachment{
		Base: entity.NewBase(),
		DeptScoped: entity.DeptScoped{
			TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
			DeptID:       r.DeptID,
		},
		ParentType:  r.ParentType,
		ParentID:    r.ParentID,
		FileName:    r.FileName,
		ContentType: r.ContentType,
		Size:        r.Size,
		StorageKey:  r.StorageKey,
		UploadedBy:  actorID,
	}
}

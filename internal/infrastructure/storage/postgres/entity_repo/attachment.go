package entity_repo

import (
	"taskhive/internal/domain/attachment"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const attachmentTable = "attachments"

// AttachmentRepo implements attachment.Repository.
type AttachmentRepo struct {
	*soft_repo.Repo[*attachment.Attachment]
}

// NewAttachmentRepo creates a new attachment repository.
func NewAttachmentRepo(txm *postgres.TxManager) *AttachmentRepo {
	return &AttachmentRepo{
		Repo: soft_repo.NewRepo(
			txm,
			attachmentTable,
			attachment.EntityType,
			[]string{"file_name"},
			func() *attachment.Attachment { return &attachment.Attachment{} },
		),
	}
}

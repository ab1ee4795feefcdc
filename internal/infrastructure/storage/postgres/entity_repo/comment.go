package entity_repo

import (
	"taskhive/internal/domain/comment"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const commentTable = "comments"

// CommentRepo implements comment.Repository.
type CommentRepo struct {
	*soft_repo.Repo[*comment.Comment]
}

// NewCommentRepo creates a new comment repository.
func NewCommentRepo(txm *postgres.TxManager) *CommentRepo {
	return &CommentRepo{
		Repo: soft_repo.NewRepo(
			txm,
			commentTable,
			comment.EntityType,
			[]string{"body"},
			func() *comment.Comment { return &comment.Comment{} },
		),
	}
}

package entity_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taskhive/internal/core/apperror"
	"taskhive/internal/domain/user"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const userTable = "users"

// UserRepo implements user.Repository.
type UserRepo struct {
	*soft_repo.Repo[*user.User]
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{
		Repo: soft_repo.NewRepo(
			txm,
			userTable,
			user.EntityType,
			[]string{"email", "full_name"},
			func() *user.User { return &user.User{} },
		),
	}
}

// GetByEmail retrieves a live user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	q := r.Builder().
		Select(r.SelectColumns()...).
		From(userTable).
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"is_deleted": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var u user.User
	if err := pgxscan.Get(ctx, r.TxManager().GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(user.EntityType, email)
		}
		return nil, err
	}

	return &u, nil
}

package handlers

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/auth"
	"taskhive/internal/domain/user"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// UserHandler handles HTTP requests for users.
type UserHandler = EntityHandler[
	*user.User,
	dto.CreateUserRequest,
	dto.UpdateUserRequest,
]

// NewUserHandler creates a new UserHandler. The plaintext password from
// the create request is bcrypt-hashed before the entity is persisted.
func NewUserHandler(
	base *BaseHandler,
	service *user.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*user.User, error),
) *UserHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*user.User,
		dto.CreateUserRequest,
		dto.UpdateUserRequest,
	]{
		Service:  service,
		Resource: security.ResourceUser,
		Tx:       txm,
		FetchAny: fetchAny,

		MapCreate: func(req dto.CreateUserRequest, actorID id.ID) (*user.User, error) {
			u := req.ToEntity()
			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				return nil, err
			}
			u.PasswordHash = hash
			return u, nil
		},
		MapUpdate: func(req dto.UpdateUserRequest, existing *user.User) {
			req.ApplyTo(existing)
		},
		Scope: func(u *user.User) security.Scope {
			return security.Scope{OrgID: u.OrgID, DeptID: u.DeptID}
		},
	})
}

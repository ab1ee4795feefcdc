package handlers

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/activity"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// ActivityHandler handles HTTP requests for task activities.
type ActivityHandler = EntityHandler[
	*activity.Activity,
	dto.CreateActivityRequest,
	dto.UpdateActivityRequest,
]

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(
	base *BaseHandler,
	service *activity.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*activity.Activity, error),
) *ActivityHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*activity.Activity,
		dto.CreateActivityRequest,
		dto.UpdateActivityRequest,
	]{
		Service:  service,
		Resource: security.ResourceActivity,
		Tx:       txm,
		FetchAny: fetchAny,

		MapCreate: func(req dto.CreateActivityRequest, actorID id.ID) (*activity.Activity, error) {
			return req.ToEntity(actorID), nil
		},
		MapUpdate: func(req dto.UpdateActivityRequest, existing *activity.Activity) {
			req.ApplyTo(existing)
		},
		Scope: func(a *activity.Activity) security.Scope {
			return security.Scope{OrgID: a.OrgID, DeptID: a.DeptID}
		},
	})
}

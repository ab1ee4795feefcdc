package handlers

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/task"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler = EntityHandler[
	*task.Task,
	dto.CreateTaskRequest,
	dto.UpdateTaskRequest,
]

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	base *BaseHandler,
	service *task.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*task.Task, error),
) *TaskHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*task.Task,
		dto.CreateTaskRequest,
		dto.UpdateTaskRequest,
	]{
		Service:  service,
		Resource: security.ResourceTask,
		Tx:       txm,
		FetchAny: fetchAny,

		MapCreate: func(req dto.CreateTaskRequest, actorID id.ID) (*task.Task, error) {
			return req.ToEntity(actorID), nil
		},
		MapUpdate: func(req dto.UpdateTaskRequest, existing *task.Task) {
			req.ApplyTo(existing)
		},
		Scope: func(t *task.Task) security.Scope {
			return security.Scope{OrgID: t.OrgID, DeptID: t.DeptID}
		},
	})
}

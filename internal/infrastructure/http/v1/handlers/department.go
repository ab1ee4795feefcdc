package handlers

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/department"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// DepartmentHandler handles HTTP requests for departments.
type DepartmentHandler = EntityHandler[
	*department.Department,
	dto.CreateDepartmentRequest,
	dto.UpdateDepartmentRequest,
]

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(
	base *BaseHandler,
	service *department.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*department.Department, error),
) *DepartmentHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*department.Department,
		dto.CreateDepartmentRequest,
		dto.UpdateDepartmentRequest,
	]{
		Service:  service,
		Resource: security.ResourceDepartment,
		Tx:       txm,
		FetchAny: fetchAny,

		MapCreate: func(req dto.CreateDepartmentRequest, actorID id.ID) (*department.Department, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateDepartmentRequest, existing *department.Department) {
			req.ApplyTo(existing)
		},
		Scope: func(d *department.Department) security.Scope {
			return security.Scope{OrgID: d.OrgID, DeptID: d.ID}
		},
	})
}

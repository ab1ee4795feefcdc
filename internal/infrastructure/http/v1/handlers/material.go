package handlers

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/material"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// MaterialHandler handles HTTP requests for catalog materials.
type MaterialHandler = EntityHandler[
	*material.Material,
	dto.CreateMaterialRequest,
	dto.UpdateMaterialRequest,
]

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(
	base *BaseHandler,
	service *material.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*material.Material, error),
) *MaterialHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*material.Material,
		dto.CreateMaterialRequest,
		dto.UpdateMaterialRequest,
	]{
		Service:  service,
		Resource: security.ResourceMaterial,
		Tx:       txm,
		FetchAny: fetchAny,

		MapCreate: func(req dto.CreateMaterialRequest, actorID id.ID) (*material.Material, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateMaterialRequest, existing *material.Material) {
			req.ApplyTo(existing)
		},
		Scope: func(m *material.Material) security.Scope {
			return security.Scope{OrgID: m.OrgID, DeptID: m.DeptID}
		},
	})
}

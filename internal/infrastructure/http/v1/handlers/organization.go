package handlers

import (
	"context"

	"taskhive/internal/core/id"
	"taskhive/internal/core/security"
	"taskhive/internal/core/tx"
	"taskhive/internal/domain/organization"
	"taskhive/internal/infrastructure/http/v1/dto"
)

// OrganizationHandler handles HTTP requests for organizations.
type OrganizationHandler = EntityHandler[
	*organization.Organization,
	dto.CreateOrganizationRequest,
	dto.UpdateOrganizationRequest,
]

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(
	base *BaseHandler,
	service *organization.Service,
	txm tx.Manager,
	fetchAny func(ctx context.Context, entityID id.ID) (*organization.Organization, error),
) *OrganizationHandler {
	return NewEntityHandler(base, EntityHandlerConfig[
		*organization.Organization,
		dto.CreateOrganizationRequest,
		dto.UpdateOrganizationRequest,
	]{
		Service:  service,
		Resource: security.ResourceOrganization,
		Tx:       txm,
		FetchAny: fetchAny,

		MapCreate: func(req dto.CreateOrganizationRequest, actorID id.ID) (*organization.Organization, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateOrganizationRequest, existing *organization.Organization) {
			req.ApplyTo(existing)
		},
		Scope: func(o *organization.Organization) security.Scope {
			return security.Scope{OrgID: o.ID}
		},
	})
}

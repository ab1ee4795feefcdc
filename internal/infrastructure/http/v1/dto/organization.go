package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/domain/organization"
)

// CreateOrganizationRequest is the request body for creating an organization.
type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateOrganizationRequest) ToEntity() *organization.Organization {
	return &organization.Organization{
		Base: entity.NewBase(),
		Name: r.Name,
		Slug: r.Slug,
	}
}

// UpdateOrganizationRequest is the request body for updating an organization.
type UpdateOrganizationRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateOrganizationRequest) ApplyTo(o *organization.Organization) {
	o.Name = r.Name
	o.Slug = r.Slug
	o.Version = r.Version
}

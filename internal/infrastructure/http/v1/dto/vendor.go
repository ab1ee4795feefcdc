package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/vendor"
)

// CreateVendorRequest is the request body for creating a vendor.
type CreateVendorRequest struct {
	OrgID        id.ID  `json:"orgId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contactEmail"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateVendorRequest) ToEntity() *vendor.Vendor {
	return &vendor.Vendor{
		Base:         entity.NewBase(),
		TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
		Name:         r.Name,
		ContactEmail: r.ContactEmail,
	}
}

// UpdateVendorRequest is the request body for updating a vendor.
type UpdateVendorRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contactEmail"`
	Version      int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateVendorRequest) ApplyTo(v *vendor.Vendor) {
	v.Name = r.Name
	v.ContactEmail = r.ContactEmail
	v.Version = r.Version
}

package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
	"taskhive/internal/domain/material"
)

// CreateMaterialRequest is the request body for creating a catalog material.
type CreateMaterialRequest struct {
	OrgID     id.ID       `json:"orgId" binding:"required"`
	DeptID    id.ID       `json:"deptId" binding:"required"`
	Name      string      `json:"name" binding:"required"`
	Unit      string      `json:"unit" binding:"required"`
	UnitPrice types.Money `json:"unitPrice"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMaterialRequest) ToEntity() *material.Material {
	return &material.Material{
		Base: entity.NewBase(),
		DeptScoped: entity.DeptScoped{
			TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
			DeptID:       r.DeptID,
		},
		Name:      r.Name,
		Unit:      r.Unit,
		UnitPrice: r.UnitPrice,
	}
}

// UpdateMaterialRequest is the request body for updating a material.
type UpdateMaterialRequest struct {
	Name      string      `json:"name" binding:"required"`
	Unit      string      `json:"unit" binding:"required"`
	UnitPrice types.Money `json:"unitPrice"`
	Version   int         `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMaterialRequest) ApplyTo(m *material.Material) {
	m.Name = r.Name
	m.Unit = r.Unit
	m.UnitPrice = r.UnitPrice
	m.Version = r.Version
}

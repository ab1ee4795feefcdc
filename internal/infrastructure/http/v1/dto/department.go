package dto

import (
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/department"
)

// CreateDepartmentRequest is the request body for creating a department.
type CreateDepartmentRequest struct {
	OrgID id.ID  `json:"orgId" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateDepartmentRequest) ToEntity() *department.Department {
	return &department.Department{
		Base:         entity.NewBase(),
		TenantScoped: entity.TenantScoped{OrgID: r.OrgID},
		Name:         r.Name,
		Code:         r.Code,
	}
}

// UpdateDepartmentRequest is the request body for updating a department.
type UpdateDepartmentRequest struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateDepartmentRequest) ApplyTo(d *department.Department) {
	d.Name = r.Name
	d.Code = r.Code
	d.Version = r.Version
}

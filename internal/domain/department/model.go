// Package department holds organizational units under a tenant.
package department

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
)

// EntityType is the discriminator for the cascade registry.
const EntityType = "department"

// Department is an organizational unit owning users, tasks, and materials.
type Department struct {
	entity.Base
	entity.TenantScoped

	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// Validate implements entity.Validatable.
func (d *Department) Validate(ctx context.Context) error {
	if d.Name == "" {
		return apperror.NewValidation("department name is required")
	}
	if d.Code == "" {
		return apperror.NewValidation("department code is required")
	}
	return nil
}

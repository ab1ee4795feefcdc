// Package organization holds the root tenant entity.
package organization

import (
	"context"
	"regexp"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
)

// EntityType is the discriminator for the cascade registry.
const EntityType = "organization"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Organization is the top-level isolation boundary for all data.
// The one flagged IsPlatformOrg represents the platform operator itself
// and can never be deleted.
type Organization struct {
	entity.Base

	Name          string `db:"name" json:"name"`
	Slug          string `db:"slug" json:"slug"`
	IsPlatformOrg bool   `db:"is_platform_org" json:"isPlatformOrg"`
}

// Validate implements entity.Validatable.
func (o *Organization) Validate(ctx context.Context) error {
	if o.Name == "" {
		return apperror.NewValidation("organization name is required")
	}
	if !slugPattern.MatchString(o.Slug) {
		return apperror.NewValidation("slug must be lowercase alphanumeric with hyphens").
			WithDetail("slug", o.Slug)
	}
	return nil
}

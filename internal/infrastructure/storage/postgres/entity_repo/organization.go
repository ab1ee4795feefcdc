// Package entity_repo provides the per-entity PostgreSQL repositories.
// Each embeds the generic soft-delete repository and adds entity-specific
// queries on top of it.
package entity_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taskhive/internal/core/apperror"
	"taskhive/internal/domain/organization"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const organizationTable = "organizations"

// OrganizationRepo implements organization.Repository.
type OrganizationRepo struct {
	*soft_repo.Repo[*organization.Organization]
}

// NewOrganizationRepo creates a new organization repository.
func NewOrganizationRepo(txm *postgres.TxManager) *OrganizationRepo {
	return &OrganizationRepo{
		Repo: soft_repo.NewRepo(
			txm,
			organizationTable,
			organization.EntityType,
			[]string{"name", "slug"},
			func() *organization.Organization { return &organization.Organization{} },
		),
	}
}

// GetBySlug retrieves a live organization by its slug.
func (r *OrganizationRepo) GetBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	q := r.Builder().
		Select(r.SelectColumns()...).
		From(organizationTable).
		Where(squirrel.Eq{"slug": slug}).
		Where(squirrel.Eq{"is_deleted": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var o organization.Organization
	if err := pgxscan.Get(ctx, r.TxManager().GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(organization.EntityType, slug)
		}
		return nil, err
	}

	return &o, nil
}

package entity_repo

import (
	"taskhive/internal/domain/material"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const materialTable = "materials"

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	*soft_repo.Repo[*material.Material]
}

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txm *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{
		Repo: soft_repo.NewRepo(
			txm,
			materialTable,
			material.EntityType,
			[]string{"name"},
			func() *material.Material { return &material.Material{} },
		),
	}
}

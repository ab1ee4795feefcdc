package entity_repo

import (
	"taskhive/internal/domain/department"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const departmentTable = "departments"

// DepartmentRepo implements department.Repository.
type DepartmentRepo struct {
	*soft_repo.Repo[*department.Department]
}

// NewDepartmentRepo creates a new department repository.
func NewDepartmentRepo(txm *postgres.TxManager) *DepartmentRepo {
	return &DepartmentRepo{
		Repo: soft_repo.NewRepo(
			txm,
			departmentTable,
			department.EntityType,
			[]string{"name", "code"},
			func() *department.Department { return &department.Department{} },
		),
	}
}

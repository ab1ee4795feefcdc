package entity_repo

import (
	"taskhive/internal/domain/vendor"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const vendorTable = "vendors"

// VendorRepo implements vendor.Repository.
type VendorRepo struct {
	*soft_repo.Repo[*vendor.Vendor]
}

// NewVendorRepo creates a new vendor repository.
func NewVendorRepo(txm *postgres.TxManager) *VendorRepo {
	return &VendorRepo{
		Repo: soft_repo.NewRepo(
			txm,
			vendorTable,
			vendor.EntityType,
			[]string{"name", "contact_email"},
			func() *vendor.Vendor { return &vendor.Vendor{} },
		),
	}
}

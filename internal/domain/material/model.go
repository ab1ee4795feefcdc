// Package material holds the material catalog and the line-item types
// embedded by routine tasks and task activities.
package material

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
	"taskhive/internal/core/types"
)

// EntityType is the discriminator for polymorphic references and the
// cascade registry.
const EntityType = "material"

// Material is a consumable referenced by quantity from routine task and
// activity line items.
type Material struct {
	entity.Base
	entity.DeptScoped

	Name      string      `db:"name" json:"name"`
	Unit      string      `db:"unit" json:"unit"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// Validate implements entity.Validatable.
func (m *Material) Validate(ctx context.Context) error {
	if m.Name == "" {
		return apperror.NewValidation("material name is required")
	}
	if m.Unit == "" {
		return apperror.NewValidation("material unit is required")
	}
	if m.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative")
	}
	return nil
}

// Usage is one materials-usage line item on a routine task or activity.
type Usage struct {
	MaterialID id.ID           `json:"materialId"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// Cost returns quantity * unit price.
func (u Usage) Cost() decimal.Decimal {
	return u.Quantity.Mul(u.UnitPrice)
}

// UsageList is a set of line items persisted as a JSONB array.
type UsageList []Usage

// Total sums the line-item costs.
func (l UsageList) Total() decimal.Decimal {
	total := decimal.Zero
	for _, u := range l {
		total = total.Add(u.Cost())
	}
	return total
}

// Without returns the list with every line item for the material removed,
// alongside the removed items.
func (l UsageList) Without(materialID id.ID) (kept UsageList, removed []Usage) {
	for _, u := range l {
		if u.MaterialID == materialID {
			removed = append(removed, u)
			continue
		}
		kept = append(kept, u)
	}
	return kept, removed
}

// Value implements driver.Valuer (JSONB encoding).
func (l UsageList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *UsageList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into UsageList", src)
	}

	return json.Unmarshal(data, l)
}

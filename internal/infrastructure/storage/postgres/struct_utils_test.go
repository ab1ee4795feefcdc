package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskhive/internal/core/entity"
	"taskhive/internal/core/id"
)

type mockEntity struct {
	entity.Base
	entity.TenantScoped
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns_TombstoneFields(t *testing.T) {
	cols := ExtractDBColumns[mockEntity]()

	expected := []string{
		"id", "created_at", "updated_at", "version",
		"is_deleted", "deleted_at", "deleted_by",
		"restored_at", "restored_by", "restore_count",
		"org_id", "name",
	}

	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
}

func TestStructToMap_TombstoneFields(t *testing.T) {
	now := time.Now().UTC()
	actor := id.New()

	e := mockEntity{
		Base: entity.Base{
			ID:      id.New(),
			Version: 3,
			Tombstone: entity.Tombstone{
				IsDeleted:    true,
				DeletedAt:    &now,
				DeletedBy:    &actor,
				RestoreCount: 2,
			},
		},
		TenantScoped: entity.TenantScoped{OrgID: id.New()},
		Name:         "drills",
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, true, m["is_deleted"])
	assert.Equal(t, &now, m["deleted_at"])
	assert.Equal(t, &actor, m["deleted_by"])
	assert.Equal(t, 2, m["restore_count"])
	assert.Equal(t, e.OrgID, m["org_id"])
	assert.Equal(t, "drills", m["name"])
	assert.Equal(t, 3, m["version"])
}

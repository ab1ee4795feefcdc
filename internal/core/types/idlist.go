package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"taskhive/internal/core/id"
)

// IDList is a list of entity IDs persisted as a JSONB array.
// Used for assignees, watchers, mentions, recipients.
type IDList []id.ID

// Contains reports whether the list holds the given ID.
func (l IDList) Contains(target id.ID) bool {
	for _, v := range l {
		if v == target {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer (JSONB encoding).
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
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
		return fmt.Errorf("cannot scan %T into IDList", src)
	}

	return json.Unmarshal(data, l)
}

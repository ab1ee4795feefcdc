package reaper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchedule(t *testing.T) {
	schedule := DefaultSchedule()
	require.NotEmpty(t, schedule)

	byTable := make(map[string]Retention, len(schedule))
	for _, ret := range schedule {
		_, dup := byTable[ret.Table]
		require.False(t, dup, "duplicate table %s", ret.Table)
		byTable[ret.Table] = ret
	}

	expected := []string{
		"organizations", "departments", "users", "tasks", "task_activities",
		"comments", "attachments", "materials", "notifications", "vendors",
	}
	for _, table := range expected {
		assert.Contains(t, byTable, table)
	}

	// Organizations are never purged: their tombstones anchor the audit
	// trail of everything that lived under them.
	assert.Equal(t, time.Duration(0), byTable["organizations"].KeepFor)

	// Everything else must have a positive retention window.
	for table, ret := range byTable {
		if table == "organizations" {
			continue
		}
		assert.Positive(t, ret.KeepFor, "table %s", table)
	}

	assert.Equal(t, 30*24*time.Hour, byTable["notifications"].KeepFor)
}

func TestNewDefaultsInterval(t *testing.T) {
	r := New(nil, DefaultSchedule(), 0)
	assert.Equal(t, time.Hour, r.interval)

	r = New(nil, DefaultSchedule(), 5*time.Minute)
	assert.Equal(t, 5*time.Minute, r.interval)
}

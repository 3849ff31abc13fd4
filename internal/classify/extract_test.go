package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntityPriorityOrder(t *testing.T) {
	// All three sources resolve; details must win.
	raw := RawEvent{
		Details: "server name: web01",
		Message: "server web02 stopped successfully.",
		Title:   "server web03 stopped",
	}
	ent := ExtractEntity(raw)
	assert.True(t, ent.Resolved)
	assert.Equal(t, "web01", ent.Name)
	assert.False(t, ent.Bulk)
}

func TestExtractEntityFromMessage(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    string
	}{
		{"plain", "server web02 completed successfully", "web02"},
		{"trailing period", "Stopped server db-01.", "db-01"},
		{"trailing comma", "server cache02, now rebooting", "cache02"},
		{"quoted", `server 'worker3' was removed`, "worker3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ent := ExtractEntity(RawEvent{Message: tc.message})
			assert.True(t, ent.Resolved)
			assert.Equal(t, tc.want, ent.Name)
		})
	}
}

func TestExtractEntityFromTitle(t *testing.T) {
	ent := ExtractEntity(RawEvent{Title: "Server web03 deletion completed"})
	assert.True(t, ent.Resolved)
	assert.Equal(t, "web03", ent.Name)
}

func TestExtractEntityBulkSentinel(t *testing.T) {
	for _, title := range []string{
		"Bulk role assignment completed",
		"Batch stop finished",
		"Mass deletion completed",
	} {
		ent := ExtractEntity(RawEvent{Title: title})
		assert.True(t, ent.Resolved, "title %q", title)
		assert.True(t, ent.Bulk, "title %q", title)
		assert.Empty(t, ent.Name, "title %q", title)
	}
}

func TestExtractEntityUnresolved(t *testing.T) {
	ent := ExtractEntity(RawEvent{Title: "Disk usage warning", Message: "datastore at 91%"})
	assert.False(t, ent.Resolved)
	assert.False(t, ent.Bulk)
}

func TestEntityFromTitle(t *testing.T) {
	assert.Equal(t, "web01", EntityFromTitle("Server web01 backup completed"))
	assert.Empty(t, EntityFromTitle("Bulk backup completed"))
}

package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() *Snapshot {
	props := `{"priority":1}`
	return &Snapshot{
		FormatVersion: FormatVersion,
		ExportedAt:    "2026-01-02T03:04:05.000000000Z",
		SnapshotID:    "snap-1",
		Tags: []TagRecord{
			{TagID: 1, Type: "general", Value: "shopping"},
		},
		Versions: []VersionRecord{
			{VersionID: 1, LineageID: 1, Content: "Buy milk", CreatedAt: "2026-01-02T03:04:04.000000000Z", IsLatest: true, Properties: &props},
		},
		VersionTags: []LinkRecord{
			{VersionID: 1, TagID: 1},
		},
	}
}

func TestValidate_CompleteSnapshot(t *testing.T) {
	assert.NoError(t, validSnapshot().Validate())
}

func TestValidate_EmptySections(t *testing.T) {
	snap := &Snapshot{
		FormatVersion: FormatVersion,
		Tags:          []TagRecord{},
		Versions:      []VersionRecord{},
		VersionTags:   []LinkRecord{},
	}
	assert.NoError(t, snap.Validate())
}

func TestValidate_MissingFormatVersion(t *testing.T) {
	snap := validSnapshot()
	snap.FormatVersion = ""

	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format_version")
}

func TestValidate_UnsupportedFormatVersion(t *testing.T) {
	snap := validSnapshot()
	snap.FormatVersion = "2.0.0"

	err := snap.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2.0.0")
	assert.Contains(t, err.Error(), FormatVersion)
}

func TestValidate_MissingSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		want   string
	}{
		{"nil tags", func(s *Snapshot) { s.Tags = nil }, "tags"},
		{"nil versions", func(s *Snapshot) { s.Versions = nil }, "versions"},
		{"nil version tags", func(s *Snapshot) { s.VersionTags = nil }, "version_tags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := validSnapshot()
			tt.mutate(snap)

			err := snap.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateBytes_CompleteDocument(t *testing.T) {
	data, err := json.Marshal(validSnapshot())
	require.NoError(t, err)

	assert.NoError(t, ValidateBytes(data))
}

func TestValidateBytes_MinimalDocument(t *testing.T) {
	doc := `{
		"format_version": "1.1.0",
		"tags": [],
		"versions": [],
		"version_tags": []
	}`
	assert.NoError(t, ValidateBytes([]byte(doc)))
}

func TestValidateBytes_NullableFields(t *testing.T) {
	doc := `{
		"format_version": "1.1.0",
		"tags": [],
		"versions": [{
			"version_id": 1,
			"lineage_id": 1,
			"content": "x",
			"created_at": "2026-01-02T03:04:05.000000000Z",
			"is_latest": true,
			"properties": null,
			"is_deleted": false,
			"deleted_at": null
		}],
		"version_tags": []
	}`
	assert.NoError(t, ValidateBytes([]byte(doc)))
}

func TestValidateBytes_MissingSection(t *testing.T) {
	doc := `{
		"format_version": "1.1.0",
		"tags": [],
		"version_tags": []
	}`
	err := ValidateBytes([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestValidateBytes_WrongFieldType(t *testing.T) {
	doc := `{
		"format_version": "1.1.0",
		"tags": [{"tag_id": "one", "tag_type": "general", "tag_value": "shopping"}],
		"versions": [],
		"version_tags": []
	}`
	assert.Error(t, ValidateBytes([]byte(doc)))
}

func TestValidateBytes_UnknownField(t *testing.T) {
	doc := `{
		"format_version": "1.1.0",
		"checksum": "abc123",
		"tags": [],
		"versions": [],
		"version_tags": []
	}`
	assert.Error(t, ValidateBytes([]byte(doc)))
}

// The wire contract: snake_case keys, and the nullable version fields
// present even when null so re-validation of emitted documents passes.
func TestSnapshotJSON_WireFormat(t *testing.T) {
	snap := validSnapshot()
	snap.Versions[0].Properties = nil

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"format_version", "exported_at", "snapshot_id", "tags", "versions", "version_tags"} {
		assert.Contains(t, doc, key)
	}

	var versions []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["versions"], &versions))
	require.Len(t, versions, 1)
	assert.Equal(t, "null", string(versions[0]["properties"]))
	assert.Equal(t, "null", string(versions[0]["deleted_at"]))
	assert.Equal(t, "false", string(versions[0]["is_deleted"]))
}

// Package snapshot defines the self-describing JSON interchange format
// for full-store export and import.
//
// A snapshot mirrors the store's three relational sections (tags,
// versions, version_tags) verbatim: identifiers and stored timestamp
// text are carried as-is, so exporting and immediately re-importing
// reproduces identical rows. Properties travel as raw JSON text to keep
// the round trip byte-stable.
package snapshot

import "fmt"

// FormatVersion is the only snapshot format this build reads and
// writes. Import requires exact equality; there is no cross-version
// migration.
const FormatVersion = "1.1.0"

// Snapshot is a complete store in interchange form.
type Snapshot struct {
	FormatVersion string          `json:"format_version"`
	ExportedAt    string          `json:"exported_at"`
	SnapshotID    string          `json:"snapshot_id,omitempty"`
	Tags          []TagRecord     `json:"tags"`
	Versions      []VersionRecord `json:"versions"`
	VersionTags   []LinkRecord    `json:"version_tags"`
}

// TagRecord is one row of the tag vocabulary.
type TagRecord struct {
	TagID int64  `json:"tag_id"`
	Type  string `json:"tag_type"`
	Value string `json:"tag_value"`
}

// VersionRecord is one version row. CreatedAt and DeletedAt carry the
// stored timestamp text untouched; Properties carries the stored JSON
// text untouched, nil meaning NULL.
type VersionRecord struct {
	VersionID  int64   `json:"version_id"`
	LineageID  int64   `json:"lineage_id"`
	Content    string  `json:"content"`
	CreatedAt  string  `json:"created_at"`
	IsLatest   bool    `json:"is_latest"`
	Properties *string `json:"properties"`
	IsDeleted  bool    `json:"is_deleted"`
	DeletedAt  *string `json:"deleted_at"`
}

// LinkRecord is one version-to-tag link.
type LinkRecord struct {
	VersionID int64 `json:"version_id"`
	TagID     int64 `json:"tag_id"`
}

// Validate checks the structural contract of a decoded snapshot: the
// format version gate and the presence of every section. Nothing about
// the database is consulted.
func (s *Snapshot) Validate() error {
	if s.FormatVersion == "" {
		return fmt.Errorf("snapshot has no format_version")
	}
	if s.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported snapshot format version %q (this build reads %q)", s.FormatVersion, FormatVersion)
	}
	if s.Tags == nil {
		return fmt.Errorf("snapshot is missing the tags section")
	}
	if s.Versions == nil {
		return fmt.Errorf("snapshot is missing the versions section")
	}
	if s.VersionTags == nil {
		return fmt.Errorf("snapshot is missing the version_tags section")
	}
	return nil
}

package note

import "time"

// GeneralTagType is the tag type assigned when the user supplies no
// explicit type. General-typed tags format as their bare value.
const GeneralTagType = "general"

// Version is one immutable snapshot of a lineage.
//
// VersionID is unique and never reused. LineageID groups all versions of
// the same logical note; on the first version of a lineage the two are
// equal (the root points at itself). Content and CreatedAt never change
// once written - any edit appends a new version instead.
//
// IsDeleted and DeletedAt are meaningful only on the version where
// IsLatest is true. Older versions keep whatever values they had when
// they were superseded.
type Version struct {
	VersionID  int64          `json:"version_id"`
	LineageID  int64          `json:"lineage_id"`
	Content    string         `json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
	IsLatest   bool           `json:"is_latest"`
	IsDeleted  bool           `json:"is_deleted"`
	DeletedAt  *time.Time     `json:"deleted_at,omitempty"`
	Properties map[string]any `json:"properties"`

	// Tags holds the version's resolved tag set in display form:
	// bare value for general-typed tags, "type:value" otherwise.
	Tags []string `json:"tags"`
}

// Update describes the changes to apply when appending a new version to
// a lineage. Nil fields carry the previous version's value forward.
//
// Tags follows replace-wholesale semantics: a nil slice keeps the old
// tag set, while a non-nil slice (including an empty one) becomes the
// complete new set. Properties are merged key-by-key over the carried
// map, never replaced as a whole.
type Update struct {
	Content    *string
	Tags       []string
	Properties map[string]any
}

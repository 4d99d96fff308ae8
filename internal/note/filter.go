package note

import "time"

// Filter describes a composite query over the store.
//
// Predicates combine with AND across dimensions. Within a dimension:
// Keywords are OR-combined substring matches against content;
// IncludeTags all must be present; ExcludeTags none may be present;
// AnyOfTags at least one must be present. CreatedAfter/CreatedBefore
// bound created_at inclusively. A zero Filter matches every live note.
//
// VersionIDs and LineageIDs are override modes, checked in that order:
// VersionIDs returns those exact version rows with no latest/deleted
// filtering; LineageIDs returns the active latest version of each
// listed lineage. When either is set, all other predicates are ignored.
type Filter struct {
	Keywords    []string
	IncludeTags []string
	ExcludeTags []string
	AnyOfTags   []string

	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	LineageIDs []int64
	VersionIDs []int64
}

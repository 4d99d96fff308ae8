// Package note defines the domain types of the versioned record store:
// versions, typed tags, query filters, and version updates.
//
// A note is a lineage: an append-only chain of immutable versions. Each
// version snapshots the note's content, properties, and tag set at one
// point in time. Exactly one version per live lineage is the latest.
//
// Types here carry no storage behavior. Parsing and formatting of tags
// are pure functions so the store and the CLI share one normalization.
package note

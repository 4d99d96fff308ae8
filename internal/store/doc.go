// Package store provides SQLite-backed durable storage for versioned notes.
//
// Notes are lineages of immutable versions:
//   - versions: append-only arena of version rows, grouped by lineage_id
//     (the lineage root references itself)
//   - tags: deduplicated typed-tag vocabulary, UNIQUE(tag_type, tag_value)
//   - version_tags: many-to-many links, fixed per version at creation
//   - settings: flat key/value table for collaborating layers
//
// # Invariants
//
//   - Every lineage with at least one non-purged version has exactly one
//     row with is_latest = 1
//   - Version rows are never updated in place except to retire is_latest
//     and to flip the soft-delete flags on the current latest
//   - is_deleted/deleted_at are meaningful only on the latest version
//   - Tags are never garbage-collected when they become unreferenced
//
// # Transaction model
//
// Single writer, transaction per operation: every write method performs
// its reads and writes inside one transaction and rolls back completely
// on failure. Partial state (a version without its tag links, a half
// purged lineage) is never observable.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// The store never logs. Every outcome surfaces as a typed *Error or as
// a boolean for lifecycle operations where "nothing to do" is normal.
package store

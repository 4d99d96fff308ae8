package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/notevault/notevault/internal/snapshot"
)

// defaultSnapshotID names one export event. UUIDv7 embeds the creation
// time in the most significant bits, so snapshot ids sort
// chronologically.
func defaultSnapshotID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ExportSnapshot dumps the complete store: the tag vocabulary, every
// version of every lineage including superseded and soft-deleted ones,
// and all tag links.
//
// Identifiers and stored timestamp text are carried verbatim so that an
// export immediately re-imported reproduces identical rows. Sections
// are ordered by id for stable output. Databases initialized before
// delete tracking existed export with is_deleted false and deleted_at
// null.
func (s *Store) ExportSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	snap := &snapshot.Snapshot{
		FormatVersion: snapshot.FormatVersion,
		ExportedAt:    formatTime(s.now()),
		SnapshotID:    s.newSnapshotID(),
		Tags:          []snapshot.TagRecord{},
		Versions:      []snapshot.VersionRecord{},
		VersionTags:   []snapshot.LinkRecord{},
	}

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT tag_id, tag_type, tag_value FROM tags ORDER BY tag_id
	`)
	if err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag snapshot.TagRecord
		if err := tagRows.Scan(&tag.TagID, &tag.Type, &tag.Value); err != nil {
			return nil, fmt.Errorf("export tags: scan: %w", err)
		}
		snap.Tags = append(snap.Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}

	// Older databases predate the delete-tracking columns.
	hasDeleteColumns, err := s.hasColumn(ctx, "versions", "is_deleted")
	if err != nil {
		return nil, fmt.Errorf("export versions: %w", err)
	}

	versionQuery := `
		SELECT version_id, lineage_id, content, created_at, is_latest, properties
		FROM versions ORDER BY version_id
	`
	if hasDeleteColumns {
		versionQuery = `
			SELECT version_id, lineage_id, content, created_at, is_latest, properties, is_deleted, deleted_at
			FROM versions ORDER BY version_id
		`
	}
	versionRows, err := s.db.QueryContext(ctx, versionQuery)
	if err != nil {
		return nil, fmt.Errorf("export versions: %w", err)
	}
	defer versionRows.Close()
	for versionRows.Next() {
		var (
			v         snapshot.VersionRecord
			lineageID sql.NullInt64
			props     sql.NullString
			deletedAt sql.NullString
		)
		if hasDeleteColumns {
			err = versionRows.Scan(&v.VersionID, &lineageID, &v.Content, &v.CreatedAt, &v.IsLatest, &props, &v.IsDeleted, &deletedAt)
		} else {
			err = versionRows.Scan(&v.VersionID, &lineageID, &v.Content, &v.CreatedAt, &v.IsLatest, &props)
		}
		if err != nil {
			return nil, fmt.Errorf("export versions: scan: %w", err)
		}
		v.LineageID = lineageID.Int64
		if props.Valid {
			v.Properties = &props.String
		}
		if deletedAt.Valid {
			v.DeletedAt = &deletedAt.String
		}
		snap.Versions = append(snap.Versions, v)
	}
	if err := versionRows.Err(); err != nil {
		return nil, fmt.Errorf("export versions: %w", err)
	}

	linkRows, err := s.db.QueryContext(ctx, `
		SELECT version_id, tag_id FROM version_tags ORDER BY version_id, tag_id
	`)
	if err != nil {
		return nil, fmt.Errorf("export version tags: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var link snapshot.LinkRecord
		if err := linkRows.Scan(&link.VersionID, &link.TagID); err != nil {
			return nil, fmt.Errorf("export version tags: scan: %w", err)
		}
		snap.VersionTags = append(snap.VersionTags, link)
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("export version tags: %w", err)
	}

	return snap, nil
}

// ImportSnapshot loads a snapshot into this store, preserving every
// identifier and timestamp verbatim. The snapshot is validated before
// any row is written; a structurally invalid or version-mismatched
// snapshot satisfies IsFormatMismatch and leaves the store untouched.
//
// Import assumes an empty store. A colliding identifier aborts the
// whole import with an error satisfying IsIntegrity, and no partial
// data remains.
func (s *Store) ImportSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return NewFormatMismatch(err.Error())
	}

	// Lineage roots arrive as complete self-referencing rows, so
	// foreign keys stay off for the duration. The pragma is a no-op
	// inside a transaction, which is why it is toggled on the
	// connection first; the single-connection pool makes that safe.
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("import: disable foreign keys: %w", err)
	}
	defer s.db.Exec("PRAGMA foreign_keys = ON")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, tag := range snap.Tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tags (tag_id, tag_type, tag_value)
			VALUES (?, ?, ?)
		`, tag.TagID, tag.Type, tag.Value); err != nil {
			return importError("tag", tag.TagID, err)
		}
	}

	for _, v := range snap.Versions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO versions
			(version_id, lineage_id, content, created_at, is_latest, properties, is_deleted, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, v.VersionID, v.LineageID, v.Content, v.CreatedAt, v.IsLatest,
			nullableText(v.Properties), v.IsDeleted, nullableText(v.DeletedAt)); err != nil {
			return importError("version", v.VersionID, err)
		}
	}

	for _, link := range snap.VersionTags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO version_tags (version_id, tag_id)
			VALUES (?, ?)
		`, link.VersionID, link.TagID); err != nil {
			return importError("version tag link", link.VersionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}
	return nil
}

// ExportToFile writes an indented snapshot JSON document to path,
// creating parent directories as needed.
func (s *Store) ExportToFile(ctx context.Context, path string) (*snapshot.Snapshot, error) {
	snap, err := s.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("export to file: %w", err)
		}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export to file: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("export to file: %w", err)
	}
	return snap, nil
}

// ImportFromFile validates and loads a snapshot file, returning the
// decoded snapshot on success. Schema validation runs against the raw
// bytes first, so malformed files are rejected with IsFormatMismatch
// before any decoding.
func (s *Store) ImportFromFile(ctx context.Context, path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	if !json.Valid(data) {
		return nil, NewFormatMismatch(fmt.Sprintf("snapshot file %s is not valid JSON", path))
	}
	if err := snapshot.ValidateBytes(data); err != nil {
		return nil, NewFormatMismatch(err.Error())
	}

	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, NewFormatMismatch(fmt.Sprintf("decode snapshot: %v", err))
	}

	if err := s.ImportSnapshot(ctx, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// importError maps constraint violations to the integrity taxonomy and
// wraps everything else.
func importError(kind string, id int64, err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
		return NewIntegrity(fmt.Sprintf("import %s %d collides with existing data", kind, id), err)
	}
	return fmt.Errorf("import %s %d: %w", kind, id, err)
}

// hasColumn probes the physical schema for a column.
func (s *Store) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table info for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate table info: %w", err)
	}
	return false, nil
}

func nullableText(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

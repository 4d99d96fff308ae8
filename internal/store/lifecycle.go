package store

import (
	"context"
	"fmt"

	"github.com/notevault/notevault/internal/note"
)

// SoftDelete marks the active version of a lineage deleted, stamping
// deleted_at. Returns true if a version transitioned; false when the
// lineage has no active version (unknown, already deleted, or purged).
// Absence is a normal outcome here, not an error.
//
// History survives: superseded versions are untouched and the lineage
// stays restorable until purged.
func (s *Store) SoftDelete(ctx context.Context, lineageID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE versions
		SET is_deleted = 1, deleted_at = ?
		WHERE lineage_id = ? AND is_latest = 1 AND is_deleted = 0
	`, formatTime(s.now()), lineageID)
	if err != nil {
		return false, fmt.Errorf("soft delete: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete: rows affected: %w", err)
	}
	return affected > 0, nil
}

// Restore clears the soft-delete flags on the latest version of a
// lineage. Returns true if a version transitioned; false when the
// lineage has no deleted latest version to restore.
//
// SoftDelete then Restore round-trips exactly: the version reappears in
// searches with tags and properties intact, and no new version is
// created by either operation.
func (s *Store) Restore(ctx context.Context, lineageID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE versions
		SET is_deleted = 0, deleted_at = NULL
		WHERE lineage_id = ? AND is_latest = 1 AND is_deleted = 1
	`, lineageID)
	if err != nil {
		return false, fmt.Errorf("restore: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("restore: rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListDeleted returns the latest version of every soft-deleted lineage,
// most recently deleted first, with tags attached.
func (s *Store) ListDeleted(ctx context.Context) ([]note.Version, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM versions v
		WHERE v.is_latest = 1 AND v.is_deleted = 1
		ORDER BY v.deleted_at DESC, v.version_id DESC
	`, versionColumns))
	if err != nil {
		return nil, fmt.Errorf("list deleted: %w", err)
	}
	defer rows.Close()

	versions, err := scanVersions(rows)
	if err != nil {
		return nil, fmt.Errorf("list deleted: %w", err)
	}
	if err := s.attachTags(ctx, versions); err != nil {
		return nil, fmt.Errorf("list deleted: %w", err)
	}
	return versions, nil
}

// PurgeDeleted permanently removes every soft-deleted lineage: all of
// its versions across the full history plus their tag links. Tag
// vocabulary rows are never removed. Returns the number of lineages
// purged; zero matches is success.
func (s *Store) PurgeDeleted(ctx context.Context) (int, error) {
	return s.purge(ctx, "")
}

// PurgeDeletedOlderThan is PurgeDeleted restricted to lineages deleted
// strictly before now minus days. Days must not be negative; zero
// purges everything deleted before this instant.
func (s *Store) PurgeDeletedOlderThan(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, NewValidation("days must not be negative")
	}
	cutoff := formatTime(s.now().AddDate(0, 0, -days))
	return s.purge(ctx, cutoff)
}

// purge removes matching lineages in one transaction: either all
// lineages are gone afterwards or none are.
func (s *Store) purge(ctx context.Context, cutoff string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("purge: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	query := `SELECT lineage_id FROM versions WHERE is_latest = 1 AND is_deleted = 1`
	var args []any
	if cutoff != "" {
		query += ` AND deleted_at < ?`
		args = append(args, cutoff)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge: select lineages: %w", err)
	}
	var lineageIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("purge: scan lineage id: %w", err)
		}
		lineageIDs = append(lineageIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("purge: iterate lineages: %w", err)
	}
	rows.Close()

	// Tag links first, then versions, to respect foreign keys.
	for _, lineageID := range lineageIDs {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM version_tags
			WHERE version_id IN (SELECT version_id FROM versions WHERE lineage_id = ?)
		`, lineageID); err != nil {
			return 0, fmt.Errorf("purge lineage %d: unlink tags: %w", lineageID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM versions WHERE lineage_id = ?
		`, lineageID); err != nil {
			return 0, fmt.Errorf("purge lineage %d: delete versions: %w", lineageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("purge: commit: %w", err)
	}
	return len(lineageIDs), nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/notevault/notevault/internal/note"
)

// CreateLineage inserts the first version of a new note and returns the
// lineage id. The root version references itself, so the lineage id is
// also the first version id.
//
// Tags are parsed, normalized, and deduplicated; tokens that normalize
// to an empty value are skipped. Properties serialize to JSON TEXT, or
// NULL when empty.
func (s *Store) CreateLineage(ctx context.Context, content string, tags []string, properties map[string]any) (int64, error) {
	if content == "" {
		return 0, NewValidation("content must not be empty")
	}

	propsJSON, err := marshalProperties(properties)
	if err != nil {
		return 0, fmt.Errorf("create lineage: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create lineage: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO versions
		(lineage_id, content, created_at, is_latest, properties)
		VALUES (NULL, ?, ?, 1, ?)
	`, content, formatTime(s.now()), propsJSON)
	if err != nil {
		return 0, fmt.Errorf("create lineage: insert version: %w", err)
	}

	versionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create lineage: last insert id: %w", err)
	}

	// The lineage root points at itself.
	if _, err := tx.ExecContext(ctx, `
		UPDATE versions SET lineage_id = ? WHERE version_id = ?
	`, versionID, versionID); err != nil {
		return 0, fmt.Errorf("create lineage: set lineage root: %w", err)
	}

	tagIDs, err := resolveTags(ctx, tx, note.ParseTagList(tags))
	if err != nil {
		return 0, fmt.Errorf("create lineage: %w", err)
	}
	if err := linkTags(ctx, tx, versionID, tagIDs); err != nil {
		return 0, fmt.Errorf("create lineage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("create lineage: commit: %w", err)
	}

	return versionID, nil
}

// AppendVersion appends a new version to a lineage, retiring the
// previous latest, and returns the new version id. Fields left unset in
// up carry forward from the previous version: nil Content keeps the
// content, nil Tags keeps the tag set (a non-nil empty slice clears
// it), and Properties merge key by key over the existing map.
//
// The latest lookup is not gated on delete state: updating a
// soft-deleted note succeeds, and the appended version is live.
func (s *Store) AppendVersion(ctx context.Context, lineageID int64, up note.Update) (int64, error) {
	if up.Content != nil && *up.Content == "" {
		return 0, NewValidation("content must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append version: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	prev, err := latestVersion(ctx, tx, lineageID, false)
	if err != nil {
		return 0, err
	}

	content := prev.content
	if up.Content != nil {
		content = *up.Content
	}

	props, err := unmarshalProperties(prev.properties)
	if err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}
	if up.Properties != nil {
		props = mergeProperties(props, up.Properties)
	}
	propsJSON, err := marshalProperties(props)
	if err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}

	// Capture the outgoing tag set before touching any rows.
	var tagIDs []int64
	if up.Tags != nil {
		tagIDs, err = resolveTags(ctx, tx, note.ParseTagList(up.Tags))
	} else {
		tagIDs, err = versionTagIDs(ctx, tx, prev.versionID)
	}
	if err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE versions SET is_latest = 0 WHERE version_id = ?
	`, prev.versionID); err != nil {
		return 0, fmt.Errorf("append version: retire previous latest: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO versions
		(lineage_id, content, created_at, is_latest, properties)
		VALUES (?, ?, ?, 1, ?)
	`, lineageID, content, formatTime(s.now()), propsJSON)
	if err != nil {
		return 0, fmt.Errorf("append version: insert version: %w", err)
	}

	newVersionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append version: last insert id: %w", err)
	}

	if err := linkTags(ctx, tx, newVersionID, tagIDs); err != nil {
		return 0, fmt.Errorf("append version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append version: commit: %w", err)
	}

	return newVersionID, nil
}

// AddTag unions one tag into the current tag set by appending a new
// version that carries content and properties forward unchanged.
// Returns the new version id.
//
// Unlike AppendVersion this requires an active latest version: tagging
// a soft-deleted note is refused. Adding a tag the version already
// carries still appends a new version with an unchanged set.
func (s *Store) AddTag(ctx context.Context, lineageID int64, rawTag string) (int64, error) {
	tag, err := note.ParseTag(rawTag)
	if err != nil {
		return 0, NewValidation(err.Error())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("add tag: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	prev, err := latestVersion(ctx, tx, lineageID, true)
	if err != nil {
		return 0, err
	}

	tagIDs, err := versionTagIDs(ctx, tx, prev.versionID)
	if err != nil {
		return 0, fmt.Errorf("add tag: %w", err)
	}
	newIDs, err := resolveTags(ctx, tx, []note.Tag{tag})
	if err != nil {
		return 0, fmt.Errorf("add tag: %w", err)
	}
	tagIDs = append(tagIDs, newIDs...)

	newVersionID, err := appendCarriedVersion(ctx, tx, s.now, lineageID, prev, tagIDs)
	if err != nil {
		return 0, fmt.Errorf("add tag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("add tag: commit: %w", err)
	}

	return newVersionID, nil
}

// RemoveTag removes one tag from the current tag set by appending a new
// version that carries content and properties forward unchanged.
// Returns the new version id.
//
// Requires an active latest version. If the current version does not
// carry the tag, no version is created and the error satisfies
// IsTagNotOnVersion.
func (s *Store) RemoveTag(ctx context.Context, lineageID int64, rawTag string) (int64, error) {
	tag, err := note.ParseTag(rawTag)
	if err != nil {
		return 0, NewValidation(err.Error())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("remove tag: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	prev, err := latestVersion(ctx, tx, lineageID, true)
	if err != nil {
		return 0, err
	}

	var removeID int64
	err = tx.QueryRowContext(ctx, `
		SELECT tag_id FROM tags WHERE tag_type = ? AND tag_value = ?
	`, tag.Type, tag.Value).Scan(&removeID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, NewTagNotOnVersion(lineageID, tag.String())
	}
	if err != nil {
		return 0, fmt.Errorf("remove tag: lookup tag: %w", err)
	}

	tagIDs, err := versionTagIDs(ctx, tx, prev.versionID)
	if err != nil {
		return 0, fmt.Errorf("remove tag: %w", err)
	}

	kept := make([]int64, 0, len(tagIDs))
	found := false
	for _, id := range tagIDs {
		if id == removeID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		return 0, NewTagNotOnVersion(lineageID, tag.String())
	}

	newVersionID, err := appendCarriedVersion(ctx, tx, s.now, lineageID, prev, kept)
	if err != nil {
		return 0, fmt.Errorf("remove tag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("remove tag: commit: %w", err)
	}

	return newVersionID, nil
}

// latestRow is the slice of a version row the write paths need.
type latestRow struct {
	versionID  int64
	content    string
	properties sql.NullString
}

// latestVersion fetches the latest version of a lineage. With
// requireActive it additionally demands the version not be
// soft-deleted.
func latestVersion(ctx context.Context, tx *sql.Tx, lineageID int64, requireActive bool) (latestRow, error) {
	query := `
		SELECT version_id, content, properties FROM versions
		WHERE lineage_id = ? AND is_latest = 1
	`
	if requireActive {
		query += ` AND is_deleted = 0`
	}

	var row latestRow
	err := tx.QueryRowContext(ctx, query, lineageID).Scan(&row.versionID, &row.content, &row.properties)
	if errors.Is(err, sql.ErrNoRows) {
		if requireActive {
			return latestRow{}, NewNoActiveVersion(lineageID)
		}
		return latestRow{}, NewNoLatestVersion(lineageID)
	}
	if err != nil {
		return latestRow{}, fmt.Errorf("lookup latest version: %w", err)
	}
	return row, nil
}

// appendCarriedVersion retires prev as latest and inserts a new live
// version carrying its content and raw properties text, linked to
// exactly tagIDs. Used by the single-tag operations, which never touch
// content or properties.
func appendCarriedVersion(ctx context.Context, tx *sql.Tx, now func() time.Time, lineageID int64, prev latestRow, tagIDs []int64) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		UPDATE versions SET is_latest = 0 WHERE version_id = ?
	`, prev.versionID); err != nil {
		return 0, fmt.Errorf("retire previous latest: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO versions
		(lineage_id, content, created_at, is_latest, properties)
		VALUES (?, ?, ?, 1, ?)
	`, lineageID, prev.content, formatTime(now()), prev.properties)
	if err != nil {
		return 0, fmt.Errorf("insert version: %w", err)
	}

	newVersionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := linkTags(ctx, tx, newVersionID, tagIDs); err != nil {
		return 0, err
	}
	return newVersionID, nil
}

// resolveTags upserts each tag into the shared vocabulary and returns
// the tag ids in input order. ON CONFLICT DO NOTHING keeps existing
// rows; the follow-up SELECT fetches the id either way.
func resolveTags(ctx context.Context, tx *sql.Tx, tags []note.Tag) ([]int64, error) {
	ids := make([]int64, 0, len(tags))
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tags (tag_type, tag_value)
			VALUES (?, ?)
			ON CONFLICT(tag_type, tag_value) DO NOTHING
		`, tag.Type, tag.Value); err != nil {
			return nil, fmt.Errorf("upsert tag %s: %w", tag, err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, `
			SELECT tag_id FROM tags WHERE tag_type = ? AND tag_value = ?
		`, tag.Type, tag.Value).Scan(&id); err != nil {
			return nil, fmt.Errorf("resolve tag %s: %w", tag, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// linkTags attaches tag ids to a version. The link set is fixed for the
// life of the version. Duplicate ids in the input collapse via ON
// CONFLICT DO NOTHING.
func linkTags(ctx context.Context, tx *sql.Tx, versionID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO version_tags (version_id, tag_id)
			VALUES (?, ?)
			ON CONFLICT(version_id, tag_id) DO NOTHING
		`, versionID, tagID); err != nil {
			return fmt.Errorf("link tag %d: %w", tagID, err)
		}
	}
	return nil
}

// versionTagIDs returns the tag ids linked to a version, ordered by tag
// id for deterministic carry-forward.
func versionTagIDs(ctx context.Context, tx *sql.Tx, versionID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT tag_id FROM version_tags WHERE version_id = ? ORDER BY tag_id
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("list version tags: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version tags: %w", err)
	}
	return ids, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/notevault/notevault/internal/note"
)

// versionColumns is the full projection shared by every version query.
const versionColumns = `v.version_id, v.lineage_id, v.content, v.created_at, v.is_latest, v.properties, v.is_deleted, v.deleted_at`

// Find executes a composite filter and returns matching versions with
// their tags attached.
//
// Exactly one of three modes runs, in priority order:
//
//  1. VersionIDs set: fetch exactly those versions, including
//     superseded and deleted ones, ordered by version id ascending.
//     All other predicates are ignored.
//  2. LineageIDs set: fetch the latest live version of each lineage.
//     All other predicates are ignored.
//  3. Otherwise: search latest live versions, ANDing all predicates.
//     Keywords are OR-combined against content, IncludeTags must all be
//     present, AnyOfTags requires at least one, ExcludeTags must all be
//     absent, and the date bounds are inclusive.
//
// Search results are ordered newest first (created_at, then version id,
// descending). An empty result is an empty slice, not nil.
func (s *Store) Find(ctx context.Context, f note.Filter) ([]note.Version, error) {
	query, args := buildFindQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer rows.Close()

	versions, err := scanVersions(rows)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	if err := s.attachTags(ctx, versions); err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return versions, nil
}

// buildFindQuery compiles a filter into a single SELECT plus positional
// args. JOIN placeholders precede WHERE placeholders in the output.
func buildFindQuery(f note.Filter) (string, []any) {
	switch {
	case len(f.VersionIDs) > 0:
		query := fmt.Sprintf(`
			SELECT %s FROM versions v
			WHERE v.version_id IN (%s)
			ORDER BY v.version_id ASC
		`, versionColumns, placeholders(len(f.VersionIDs)))
		return query, int64Args(f.VersionIDs)

	case len(f.LineageIDs) > 0:
		query := fmt.Sprintf(`
			SELECT %s FROM versions v
			WHERE v.lineage_id IN (%s) AND v.is_latest = 1 AND v.is_deleted = 0
			ORDER BY v.created_at DESC, v.version_id DESC
		`, versionColumns, placeholders(len(f.LineageIDs)))
		return query, int64Args(f.LineageIDs)
	}

	var (
		joins     []string
		joinArgs  []any
		conds     = []string{"v.is_latest = 1", "v.is_deleted = 0"}
		whereArgs []any
	)

	if len(f.Keywords) > 0 {
		likes := make([]string, len(f.Keywords))
		for i, keyword := range f.Keywords {
			likes[i] = "v.content LIKE ?"
			whereArgs = append(whereArgs, "%"+keyword+"%")
		}
		conds = append(conds, "("+strings.Join(likes, " OR ")+")")
	}

	// One JOIN pair per required tag: a version only survives every
	// join if it carries every tag.
	for i, tag := range note.ParseTagList(f.IncludeTags) {
		vt := fmt.Sprintf("vt%d", i)
		tg := fmt.Sprintf("t%d", i)
		joins = append(joins, fmt.Sprintf(
			"JOIN version_tags %s ON %s.version_id = v.version_id JOIN tags %s ON %s.tag_id = %s.tag_id AND %s.tag_type = ? AND %s.tag_value = ?",
			vt, vt, tg, tg, vt, tg, tg,
		))
		joinArgs = append(joinArgs, tag.Type, tag.Value)
	}

	if anyTags := note.ParseTagList(f.AnyOfTags); len(anyTags) > 0 {
		joins = append(joins,
			"JOIN version_tags avt ON avt.version_id = v.version_id JOIN tags at ON at.tag_id = avt.tag_id")
		ors := make([]string, len(anyTags))
		for i, tag := range anyTags {
			ors[i] = "(at.tag_type = ? AND at.tag_value = ?)"
			whereArgs = append(whereArgs, tag.Type, tag.Value)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	for _, tag := range note.ParseTagList(f.ExcludeTags) {
		conds = append(conds, `NOT EXISTS (
			SELECT 1 FROM version_tags xvt
			JOIN tags xt ON xt.tag_id = xvt.tag_id
			WHERE xvt.version_id = v.version_id AND xt.tag_type = ? AND xt.tag_value = ?
		)`)
		whereArgs = append(whereArgs, tag.Type, tag.Value)
	}

	if f.CreatedAfter != nil {
		conds = append(conds, "v.created_at >= ?")
		whereArgs = append(whereArgs, formatTime(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		conds = append(conds, "v.created_at <= ?")
		whereArgs = append(whereArgs, formatTime(*f.CreatedBefore))
	}

	// DISTINCT because the any-of join can match several tag rows for
	// the same version.
	query := "SELECT DISTINCT " + versionColumns + "\nFROM versions v"
	if len(joins) > 0 {
		query += "\n" + strings.Join(joins, "\n")
	}
	query += "\nWHERE " + strings.Join(conds, " AND ")
	query += "\nORDER BY v.created_at DESC, v.version_id DESC"

	return query, append(joinArgs, whereArgs...)
}

// History returns every version of a lineage, newest first, including
// superseded and deleted versions. Unknown lineages return an empty
// slice.
func (s *Store) History(ctx context.Context, lineageID int64) ([]note.Version, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM versions v
		WHERE v.lineage_id = ?
		ORDER BY v.created_at DESC, v.version_id DESC
	`, versionColumns), lineageID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	versions, err := scanVersions(rows)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if err := s.attachTags(ctx, versions); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return versions, nil
}

// ListTags returns the full tag vocabulary ordered by type then value.
// Tags stay listed even when no live version references them.
func (s *Store) ListTags(ctx context.Context) ([]note.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_id, tag_type, tag_value FROM tags
		ORDER BY tag_type ASC, tag_value ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []note.Tag{}
	for rows.Next() {
		var tag note.Tag
		if err := rows.Scan(&tag.TagID, &tag.Type, &tag.Value); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// attachTags loads the formatted tag list for each version with one
// batched query. Tag lists come back ordered by type then value.
func (s *Store) attachTags(ctx context.Context, versions []note.Version) error {
	if len(versions) == 0 {
		return nil
	}

	ids := make([]any, len(versions))
	index := make(map[int64]int, len(versions))
	for i := range versions {
		ids[i] = versions[i].VersionID
		index[versions[i].VersionID] = i
		versions[i].Tags = []string{}
	}

	query := fmt.Sprintf(`
		SELECT vt.version_id, t.tag_type, t.tag_value
		FROM version_tags vt
		JOIN tags t ON t.tag_id = vt.tag_id
		WHERE vt.version_id IN (%s)
		ORDER BY vt.version_id, t.tag_type, t.tag_value
	`, placeholders(len(versions)))

	rows, err := s.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var versionID int64
		var tag note.Tag
		if err := rows.Scan(&versionID, &tag.Type, &tag.Value); err != nil {
			return fmt.Errorf("scan version tag: %w", err)
		}
		i := index[versionID]
		versions[i].Tags = append(versions[i].Tags, tag.String())
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate version tags: %w", err)
	}
	return nil
}

// scanVersions drains rows into versions. Never returns nil on success.
func scanVersions(rows *sql.Rows) ([]note.Version, error) {
	versions := []note.Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// scanVersion scans one row of the versionColumns projection.
func scanVersion(rows *sql.Rows) (note.Version, error) {
	var (
		v         note.Version
		lineageID sql.NullInt64
		createdAt string
		props     sql.NullString
		deletedAt sql.NullString
	)
	if err := rows.Scan(&v.VersionID, &lineageID, &v.Content, &createdAt, &v.IsLatest, &props, &v.IsDeleted, &deletedAt); err != nil {
		return note.Version{}, fmt.Errorf("scan version: %w", err)
	}
	v.LineageID = lineageID.Int64

	created, err := parseTime(createdAt)
	if err != nil {
		return note.Version{}, fmt.Errorf("version %d: %w", v.VersionID, err)
	}
	v.CreatedAt = created

	v.Properties, err = unmarshalProperties(props)
	if err != nil {
		return note.Version{}, fmt.Errorf("version %d: %w", v.VersionID, err)
	}

	if deletedAt.Valid && deletedAt.String != "" {
		deleted, err := parseTime(deletedAt.String)
		if err != nil {
			return note.Version{}, fmt.Errorf("version %d: %w", v.VersionID, err)
		}
		v.DeletedAt = &deleted
	}
	return v, nil
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// timeLayout is the fixed-width UTC format for all stored timestamps.
// Constant width keeps lexicographic order identical to chronological
// order, which the created_at index and date-range predicates rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// formatTime renders t in the store's timestamp format.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses stored timestamp TEXT. Accepts the store's own
// layout plus the RFC 3339 and SQLite datetime flavors that imported
// snapshots may carry.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// marshalProperties converts a properties map to JSON TEXT for storage.
// A nil or empty map stores as NULL.
func marshalProperties(props map[string]any) (sql.NullString, error) {
	if len(props) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal properties: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalProperties parses stored properties TEXT. NULL and empty
// text decode to an empty map so callers never see nil.
func unmarshalProperties(raw sql.NullString) (map[string]any, error) {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return map[string]any{}, nil
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(raw.String), &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	if props == nil {
		props = map[string]any{}
	}
	return props, nil
}

// mergeProperties overlays updates onto base without mutating either.
func mergeProperties(base, updates map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(updates))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

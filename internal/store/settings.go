package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting returns the stored value for key, falling back to the
// configured default when no override is stored. A key with neither
// satisfies IsNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", NewValidation("setting key must not be empty")
	}

	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		if def, ok := s.defaults[key]; ok {
			return def, nil
		}
		return "", NewSettingNotFound(key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a value for key, replacing any previous override.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return NewValidation("setting key must not be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// ListSettings returns the effective settings map: configured defaults
// overlaid with stored overrides.
func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	settings := make(map[string]string, len(s.defaults))
	for k, v := range s.defaults {
		settings[k] = v
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return settings, nil
}

// DeleteSetting removes a stored override. Returns true if a row was
// removed; false when nothing was stored for key. Configured defaults
// cannot be deleted and reappear in GetSetting after removal.
func (s *Store) DeleteSetting(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, NewValidation("setting key must not be empty")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete setting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete setting: rows affected: %w", err)
	}
	return affected > 0, nil
}

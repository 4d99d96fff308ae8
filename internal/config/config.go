// Package config resolves the store's construction-time configuration
// from built-in defaults and an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config carries everything a Store needs at construction time.
type Config struct {
	// Path is the SQLite database file. ":memory:" opens a throwaway
	// in-memory database.
	Path string `yaml:"path"`

	// SettingDefaults are the fallback values GetSetting and
	// ListSettings report for keys with no stored override.
	SettingDefaults map[string]string `yaml:"setting_defaults"`
}

// Default returns the built-in configuration: a per-user database
// location and the stock setting defaults.
func Default() Config {
	return Config{
		Path: DefaultPath(),
		SettingDefaults: map[string]string{
			"default_export_directory": "exports",
			"default_import_directory": "imports",
			"default_purge_days":       "30",
			"date_display_format":      "2006-01-02 15:04",
		},
	}
}

// DefaultPath places the database under the user's home directory,
// falling back to the working directory when home is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "notevault.db"
	}
	return filepath.Join(home, ".notevault", "notevault.db")
}

// LoadFile reads a YAML config file and overlays it onto Default().
// Unknown fields are rejected to catch typos. An empty file yields the
// defaults unchanged.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var file Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg := Default()
	if file.Path != "" {
		cfg.Path = file.Path
	}
	for k, v := range file.SettingDefaults {
		cfg.SettingDefaults[k] = v
	}
	return cfg, nil
}

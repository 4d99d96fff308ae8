package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/notevault/notevault/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Schema generation tracking:
// 1 - Initial schema (no delete tracking)
// 2 - Added is_deleted/deleted_at to versions
const currentSchemaGeneration = 2

// Store provides durable storage for versioned notes.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db       *sql.DB
	defaults map[string]string

	// Injectable for deterministic tests.
	now           func() time.Time
	newSnapshotID func() string
}

// Open creates or opens a SQLite database at cfg.Path, creating parent
// directories as needed.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// Open never creates or migrates the schema. Schema creation is an
// explicit, destructive operation (InitSchema); use Initialized to
// check whether a schema exists.
func Open(cfg config.Config) (*Store, error) {
	path := cfg.Path
	if path == "" {
		return nil, NewConnectionFailure("no database path configured", nil)
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, NewConnectionFailure(fmt.Sprintf("failed to create directory %s", dir), err)
			}
		}
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, NewConnectionFailure(fmt.Sprintf("failed to open database at %s", path), err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewConnectionFailure(fmt.Sprintf("failed to connect to database at %s", path), err)
	}

	// Configure connection pool for SQLite
	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, NewConnectionFailure("failed to configure database", err)
	}

	return &Store{
		db:            db,
		defaults:      cfg.SettingDefaults,
		now:           time.Now,
		newSnapshotID: defaultSnapshotID,
	}, nil
}

// InitSchema creates the full schema, dropping any existing tables
// first. Destructive: all stored notes, tags, and settings are lost.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaGeneration)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// Initialized reports whether the schema exists in this database.
func (s *Store) Initialized(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'versions'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check schema: %w", err)
	}
	return true, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/notevault/notevault/internal/config"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	cfg := config.Default()
	cfg.Path = filepath.Join(t.TempDir(), "test.db")

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Path = filepath.Join(t.TempDir(), "nested", "deeper", "test.db")

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(config.Config{})
	if err == nil {
		t.Fatal("expected error for empty path, got nil")
	}
	if !IsConnectionFailure(err) {
		t.Errorf("expected connection failure, got %v", err)
	}
}

func TestOpen_ParentIsFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write blocker file: %v", err)
	}

	cfg := config.Default()
	cfg.Path = filepath.Join(blocker, "test.db")

	_, err := Open(cfg)
	if err == nil {
		t.Error("expected error when parent path is a file, got nil")
	}
}

func TestOpen_DoesNotCreateSchema(t *testing.T) {
	cfg := config.Default()
	cfg.Path = filepath.Join(t.TempDir(), "test.db")

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	ok, err := s.Initialized(context.Background())
	if err != nil {
		t.Fatalf("Initialized() failed: %v", err)
	}
	if ok {
		t.Error("Open() created a schema; schema creation must be explicit")
	}
}

func TestInitialized_TrueAfterInitSchema(t *testing.T) {
	s := createTestStore(t)

	ok, err := s.Initialized(context.Background())
	if err != nil {
		t.Fatalf("Initialized() failed: %v", err)
	}
	if !ok {
		t.Error("Initialized() = false after InitSchema()")
	}
}

func TestInitSchema_DropsExistingData(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, "Buy milk", "shopping")
	if err := s.SetSetting(ctx, "default_purge_days", "7"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}

	if err := s.InitSchema(ctx); err != nil {
		t.Fatalf("second InitSchema() failed: %v", err)
	}

	var versions, tags, settings int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM versions`).Scan(&versions); err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&tags); err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&settings); err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if versions != 0 || tags != 0 || settings != 0 {
		t.Errorf("InitSchema() left data behind: %d versions, %d tags, %d settings", versions, tags, settings)
	}
}

func TestInitSchema_RecordsSchemaGeneration(t *testing.T) {
	s := createTestStore(t)

	var generation int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&generation); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if generation != currentSchemaGeneration {
		t.Errorf("user_version = %d, want %d", generation, currentSchemaGeneration)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	cfg := config.Default()
	cfg.Path = filepath.Join(t.TempDir(), "test.db")

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}
	// Second close must not panic
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)
	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Schema table tests

func TestSchema_VersionsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "versions")
	expected := []string{
		"version_id", "lineage_id", "content", "created_at",
		"is_latest", "properties", "is_deleted", "deleted_at",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("versions table missing column %q", col)
		}
	}
}

func TestSchema_TagsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "tags")
	for _, col := range []string{"tag_id", "tag_type", "tag_value"} {
		if !contains(columns, col) {
			t.Errorf("tags table missing column %q", col)
		}
	}
}

func TestSchema_VersionTagsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "version_tags")
	for _, col := range []string{"version_id", "tag_id"} {
		if !contains(columns, col) {
			t.Errorf("version_tags table missing column %q", col)
		}
	}
}

func TestSchema_SettingsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "settings")
	for _, col := range []string{"key", "value"} {
		if !contains(columns, col) {
			t.Errorf("settings table missing column %q", col)
		}
	}
}

func TestSchema_VersionsIndexes(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "versions")
	for _, idx := range []string{"idx_versions_latest_deleted_created", "idx_versions_lineage"} {
		if !contains(indexes, idx) {
			t.Errorf("versions table missing index %q", idx)
		}
	}
}

func TestSchema_TagsIndexes(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "tags")
	if !contains(indexes, "idx_tags_type_value") {
		t.Error("tags table missing index idx_tags_type_value")
	}
}

func TestSchema_VersionTagsIndexes(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "version_tags")
	for _, idx := range []string{"idx_version_tags_version", "idx_version_tags_tag"} {
		if !contains(indexes, idx) {
			t.Errorf("version_tags table missing index %q", idx)
		}
	}
}

func TestConstraint_TagsUniqueTypeValue(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.db.Exec(`INSERT INTO tags (tag_type, tag_value) VALUES ('general', 'shopping')`); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := s.db.Exec(`INSERT INTO tags (tag_type, tag_value) VALUES ('general', 'shopping')`); err == nil {
		t.Error("duplicate (tag_type, tag_value) insert succeeded, want constraint violation")
	}
}

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/note"
	"github.com/notevault/notevault/internal/testutil"
)

// createTestStore opens a fresh store in a temp directory and creates
// the schema.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Path = filepath.Join(t.TempDir(), "test.db")
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return s
}

// stepClock returns a clock advancing one second per call, starting one
// second after base. Gives every version a distinct, ordered timestamp.
func stepClock(base time.Time) func() time.Time {
	return testutil.NewStepClock(base).Now
}

// mustCreate inserts a note without properties and fails the test on
// error.
func mustCreate(t *testing.T, s *Store, content string, tags ...string) int64 {
	t.Helper()
	id, err := s.CreateLineage(context.Background(), content, tags, nil)
	if err != nil {
		t.Fatalf("CreateLineage(%q) failed: %v", content, err)
	}
	return id
}

// assertSingleLatest verifies the one-latest-row-per-lineage invariant.
func assertSingleLatest(t *testing.T, s *Store, lineageID int64) {
	t.Helper()
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM versions WHERE lineage_id = ? AND is_latest = 1`,
		lineageID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count latest versions: %v", err)
	}
	if count != 1 {
		t.Errorf("lineage %d has %d latest versions, want exactly 1", lineageID, count)
	}
}

// findLatest returns the single live latest version of a lineage via
// Find, failing the test if there is not exactly one.
func findLatest(t *testing.T, s *Store, lineageID int64) note.Version {
	t.Helper()
	versions, err := s.Find(context.Background(), note.Filter{LineageIDs: []int64{lineageID}})
	if err != nil {
		t.Fatalf("Find(lineage %d) failed: %v", lineageID, err)
	}
	if len(versions) != 1 {
		t.Fatalf("Find(lineage %d) returned %d versions, want 1", lineageID, len(versions))
	}
	return versions[0]
}

// countVersions returns the number of version rows for a lineage.
func countVersions(t *testing.T, s *Store, lineageID int64) int {
	t.Helper()
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM versions WHERE lineage_id = ?`,
		lineageID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count versions: %v", err)
	}
	return count
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_CreatesSchema(t *testing.T) {
	db := filepath.Join(t.TempDir(), "notes.db")

	out, _, err := executeCommand(t, "init", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized note store")

	_, statErr := os.Stat(db)
	assert.NoError(t, statErr, "database file should exist")
}

func TestInit_CreatesParentDirectories(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nested", "deep", "notes.db")

	_, _, err := executeCommand(t, "init", "--db", db)
	require.NoError(t, err)

	_, statErr := os.Stat(db)
	assert.NoError(t, statErr)
}

func TestInit_RefusesReinitWithoutForce(t *testing.T) {
	db := initTestDB(t)

	_, _, err := executeCommand(t, "init", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--force")
}

func TestInit_ForceWipesData(t *testing.T) {
	db := initTestDB(t)
	_, _, err := executeCommand(t, "create", "Buy milk", "--db", db)
	require.NoError(t, err)

	_, _, err = executeCommand(t, "init", "--force", "--db", db)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "find", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No notes found")
}

func TestInit_JSONOutput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "notes.db")

	out, _, err := executeCommand(t, "init", "--db", db, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelete_MovesNoteToTrash(t *testing.T) {
	db := initTestDB(t)
	_, _, err := executeCommand(t, "create", "Buy milk", "--db", db)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "delete", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted note 1")

	out, _, err = executeCommand(t, "find", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No notes found.")

	out, _, err = executeCommand(t, "trash", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
}

func TestDelete_AlreadyDeleted(t *testing.T) {
	db := initTestDB(t)
	_, _, err := executeCommand(t, "create", "Buy milk", "--db", db)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "delete", "1", "--db", db)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "delete", "1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "not live")
}

func TestDelete_MissingNote(t *testing.T) {
	db := initTestDB(t)

	_, _, err := executeCommand(t, "delete", "42", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRestore_BringsNoteBack(t *testing.T) {
	db := initTestDB(t)
	_, _, err := executeCommand(t, "create", "Buy milk", "--db", db)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "delete", "1", "--db", db)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "restore", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored note 1")

	out, _, err = executeCommand(t, "find", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")

	out, _, err = executeCommand(t, "trash", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Trash is empty.")
}

func TestRestore_NotInTrash(t *testing.T) {
	db := initTestDB(t)
	_, _, err := executeCommand(t, "create", "Buy milk", "--db", db)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "restore", "1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "not in the trash")
}

func TestRestore_KeepsHistory(t *testing.T) {
	db := initTestDB(t)
	_, _, err := executeCommand(t, "create", "Buy milk", "--db", db)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "update", "1", "--content", "Buy oat milk", "--db", db)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "delete", "1", "--db", db)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "restore", "1", "--db", db)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "history", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 version(s)")
}

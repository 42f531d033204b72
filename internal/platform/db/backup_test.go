package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBook(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "book.gnucash")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRotateBackupsCreatesNewestSlot(t *testing.T) {
	dir := t.TempDir()
	path := writeBook(t, dir, "v1")

	require.NoError(t, RotateBackups(path, 3))
	assert.Equal(t, "v1", readFile(t, path+"(0).bak"))
}

func TestRotateBackupsShiftsOlderCopies(t *testing.T) {
	dir := t.TempDir()
	path := writeBook(t, dir, "v1")
	require.NoError(t, RotateBackups(path, 3))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.NoError(t, RotateBackups(path, 3))

	assert.Equal(t, "v2", readFile(t, path+"(0).bak"))
	assert.Equal(t, "v1", readFile(t, path+"(1).bak"))
}

func TestRotateBackupsDropsCopiesPastCap(t *testing.T) {
	dir := t.TempDir()
	path := writeBook(t, dir, "v1")

	for _, content := range []string{"v2", "v3", "v4"} {
		require.NoError(t, RotateBackups(path, 2))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	require.NoError(t, RotateBackups(path, 2))

	assert.Equal(t, "v4", readFile(t, path+"(0).bak"))
	assert.Equal(t, "v3", readFile(t, path+"(1).bak"))
	_, err := os.Stat(path + "(2).bak")
	assert.True(t, os.IsNotExist(err), "copies past the cap are removed")
}

func TestRotateBackupsMissingBookIsNoop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, RotateBackups(filepath.Join(dir, "absent.gnucash"), 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// internal/storage/file_storage_test.go
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveFile("exports", "a.txt", []byte("hello")))
	assert.True(t, fs.FileExists("exports", "a.txt"))

	content, err := fs.LoadFile("exports", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)

	// second load comes from cache and must match
	content, err = fs.LoadFile("exports", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestSaveFileOverwritesAtomically(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveFile("exports", "a.txt", []byte("v1")))
	require.NoError(t, fs.SaveFile("exports", "a.txt", []byte("v2")))

	content, err := fs.LoadFile("exports", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), content)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(fs.FullPath("exports", "a.txt")))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveJSONFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveJSONFile("meta", "a.json", map[string]int{"n": 1}))

	content, err := fs.LoadFile("meta", "a.json")
	require.NoError(t, err)
	assert.Contains(t, string(content), `"n": 1`)
}

func TestDeleteFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveFile("exports", "a.txt", []byte("x")))
	require.NoError(t, fs.DeleteFile("exports", "a.txt"))
	assert.False(t, fs.FileExists("exports", "a.txt"))

	_, err = fs.LoadFile("exports", "a.txt")
	assert.Error(t, err)
}

package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("owner-1/upload.png", []byte("image-bytes"))
	require.NoError(t, err)
	require.Equal(t, "owner-1/upload.png", name)

	file, err := store.Open(name)
	require.NoError(t, err)
	defer file.Close()

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, []byte("image-bytes"), data)
}

func TestLocalStorageDeleteIsIdempotent(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("upload.png", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete("upload.png"))
	require.NoError(t, store.Delete("upload.png"))

	_, err = store.Open("upload.png")
	require.Error(t, err)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old/upload.png", []byte("stale"))
	require.NoError(t, err)
	_, err = store.Save("fresh/upload.png", []byte("fresh"))
	require.NoError(t, err)

	stalePath := filepath.Join(dir, "old", "upload.png")
	staleTime := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stalePath, staleTime, staleTime))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join("old", "upload.png")}, deleted)

	_, err = store.Open("fresh/upload.png")
	require.NoError(t, err)
}

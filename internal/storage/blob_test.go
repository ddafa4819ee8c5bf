package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorePutAndDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	key, err := store.Put("photo.png", []byte("image-bytes"))
	require.NoError(t, err)
	assert.Contains(t, key, "photo.png")

	data, err := os.ReadFile(filepath.Join(store.Dir, key))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)

	require.NoError(t, store.Delete(key))
	_, err = os.Stat(filepath.Join(store.Dir, key))
	assert.True(t, os.IsNotExist(err))

	// Deleting an already-absent key stays silent.
	assert.NoError(t, store.Delete(key))
}

func TestDiskStorePutSanitizesName(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	key, err := store.Put("../../etc/passwd", nil)
	require.NoError(t, err)
	assert.Equal(t, key, filepath.Base(key))
	assert.Contains(t, key, "passwd")
}

func TestDiskStoreDeleteRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Delete("../outside"))
}

func TestDiskStoreKeysAreUnique(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	k1, err := store.Put("photo.png", []byte("a"))
	require.NoError(t, err)
	k2, err := store.Put("photo.png", []byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

package local

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/roomplants/internal/photostore"
)

func TestLocalPhotoStoreSaveAndPath(t *testing.T) {
	tmpdir := t.TempDir()
	store, err := NewLocalPhotoStore(tmpdir)
	require.NoError(t, err)

	imageData := []byte("fake png data")
	key, err := store.Save(context.Background(), "chat-42", "image/png", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "chat-42_"))
	assert.Equal(t, ".png", filepath.Ext(key))

	path, err := store.Path(key)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestLocalPhotoStoreUniqueKeys(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(context.Background(), "1", "image/jpeg", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	b, err := store.Save(context.Background(), "1", "image/jpeg", bytes.NewReader([]byte("b")))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocalPhotoStoreSanitizesOwner(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	key, err := store.Save(context.Background(), "../../etc", "image/jpeg", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	assert.NotContains(t, key, "/")
	assert.True(t, strings.HasPrefix(key, "______etc_"))

	key, err = store.Save(context.Background(), "", "image/jpeg", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "photo_"))
}

func TestLocalPhotoStoreDelete(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "1", "image/jpeg", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))
	path, err := store.Path(key)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Delete(ctx, key), photostore.ErrNotFound)
}

func TestLocalPhotoStorePathTraversal(t *testing.T) {
	store, err := NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Path("../secret.jpg")
	assert.Error(t, err)
	assert.Error(t, store.Delete(context.Background(), "../../etc/passwd"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalPhotoStoreSaveWriteError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalPhotoStore(dir)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "1", "image/jpeg", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

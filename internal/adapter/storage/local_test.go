package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, logger.NopLogger{})
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "poster.png", []byte("fake image bytes"))
	require.NoError(t, err)

	// 6 random bytes hex-encoded plus an underscore before the original
	// name.
	base := filepath.Base(url)
	assert.True(t, strings.HasSuffix(base, "_poster.png"))
	assert.Len(t, base, len("_poster.png")+12)

	content, err := os.ReadFile(filepath.Join(dir, base))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), content)
}

func TestLocalStorageSaveUniqueNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), logger.NopLogger{})
	require.NoError(t, err)

	first, err := store.Save(context.Background(), "poster.png", []byte("a"))
	require.NoError(t, err)
	second, err := store.Save(context.Background(), "poster.png", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStorageRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, logger.NopLogger{})
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "poster.png", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))

	// Removing again, or removing an empty reference, is a no-op.
	assert.NoError(t, store.Remove(context.Background(), url))
	assert.NoError(t, store.Remove(context.Background(), ""))
}

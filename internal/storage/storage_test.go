package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is empty", func(t *testing.T) {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "storage.json"))
		require.NoError(t, err)

		_, ok, err := s.Get(ctx, KeyMemos)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("values survive reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage.json")
		s, err := NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, s.Set(ctx, KeyDarkMode, "true"))
		require.NoError(t, s.Set(ctx, KeyFontSize, "large"))
		require.NoError(t, s.Remove(ctx, KeyFontSize))

		reopened, err := NewFileStore(path)
		require.NoError(t, err)

		v, ok, err := reopened.Get(ctx, KeyDarkMode)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "true", v)

		_, ok, _ = reopened.Get(ctx, KeyFontSize)
		assert.False(t, ok)

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
	})

	t.Run("truncated file recovers empty and keeps a backup", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage.json")
		raw := []byte(`{"sparkMemos":"[]","darkMode":"tr`)
		require.NoError(t, os.WriteFile(path, raw, 0o600))

		s, err := NewFileStore(path)
		assert.ErrorIs(t, err, ErrCorrupt)
		require.NotNil(t, s)

		_, ok, err := s.Get(ctx, KeyMemos)
		require.NoError(t, err)
		assert.False(t, ok)

		backup, err := os.ReadFile(s.BackupPath())
		require.NoError(t, err)
		assert.Equal(t, raw, backup)

		require.NoError(t, s.Set(ctx, KeyDarkMode, "false"))
		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		v, ok, _ := reopened.Get(ctx, KeyDarkMode)
		assert.True(t, ok)
		assert.Equal(t, "false", v)

		backup, err = os.ReadFile(path + ".corrupt")
		require.NoError(t, err)
		assert.Equal(t, raw, backup, "writes leave the backup alone")
	})

	t.Run("unreadable path still fails", func(t *testing.T) {
		dir := t.TempDir()
		_, err := NewFileStore(dir)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCorrupt)
	})

	t.Run("default path under home", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		s, err := NewFileStore("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".spark", "storage.json"), s.Path())
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

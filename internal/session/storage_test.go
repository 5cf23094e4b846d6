package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Storage = (*FileStorage)(nil)
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyToken, "tok"))
	require.NoError(t, s.Set(ctx, KeyUser, `{"id":1}`))

	v, ok, err := s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1}`, v)

	require.NoError(t, s.Set(ctx, KeyToken, "tok-2"))
	v, _, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, s.Delete(ctx, KeyToken, KeyUser, "absent"))
	_, ok, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "default.session.json")
	s := NewFileStorage(path)
	assert.Equal(t, path, s.Path())

	exerciseStorage(t, s)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty session file should be removed")
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	ctx := context.Background()

	require.NoError(t, NewFileStorage(path).Set(ctx, KeyToken, "tok"))

	v, ok, err := NewFileStorage(path).Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
}

func TestFileStorage_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, NewFileStorage(path).Set(context.Background(), KeyToken, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStorage_PartialDeleteKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	s := NewFileStorage(path)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyToken, "tok"))
	require.NoError(t, s.Set(ctx, KeyUser, "{}"))

	require.NoError(t, s.Delete(ctx, KeyToken))

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, ok, err := s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, _, err := NewFileStorage(path).Get(context.Background(), KeyToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), path)
}

func TestFileStorage_DeleteRemovesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	require.NoError(t, NewFileStorage(path).Delete(context.Background(), KeyToken, KeyUser))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorage_SetReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	s := NewFileStorage(path)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyToken, "tok"))

	v, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
}

func TestFileStorage_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, ok, err := NewFileStorage(path).Get(context.Background(), KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

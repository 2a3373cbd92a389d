package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissing(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "data", "user_data.json"))
	require.NoError(t, err)

	data, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "user_data.json"))
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, []byte(`{"user_points":{"1":120}}`)))
	require.NoError(t, s.Save(ctx, []byte(`{"user_points":{"1":140}}`)))

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"user_points":{"1":140}}`, string(data))

	// Временные файлы не остаются в каталоге
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_FailedSaveKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "user_data.json")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []byte(`{"v":1}`)))

	// Путь занят каталогом с содержимым: rename не может его заменить
	broken := &Store{path: filepath.Join(dir, "busy")}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "busy", "inner"), 0o755))
	assert.Error(t, broken.Save(ctx, []byte(`{"v":2}`)))

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_CancelledContext(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "user_data.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, []byte("{}")), context.Canceled)
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

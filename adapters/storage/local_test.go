package storage_test

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/gen-image/adapters/storage"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

func TestLocal_PutTruncates(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocal(dir, 0)
	require.NoError(t, err)
	ctx := context.Background()
	key := core.StorageKey{Path: "frame.bin"}

	require.NoError(t, s.Put(ctx, key, strings.NewReader("0123456789")))
	require.NoError(t, s.Put(ctx, key, strings.NewReader("abc")))

	data, err := os.ReadFile(filepath.Join(dir, "frame.bin"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestLocal_GetExistsDelete(t *testing.T) {
	s, err := storage.NewLocal(t.TempDir(), 0o600)
	require.NoError(t, err)
	ctx := context.Background()
	key := core.StorageKey{Bucket: "luts", Path: "identity.bin"}

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	payload := bytes.Repeat([]byte{0x5a}, 3<<20)
	require.NoError(t, s.Put(ctx, key, bytes.NewReader(payload)))

	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocal_GetMissingKeepsPathError(t *testing.T) {
	s, err := storage.NewLocal(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), core.StorageKey{Path: "missing.pnm"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryIO))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var pe *fs.PathError
	assert.ErrorAs(t, err, &pe)
}

func TestLocal_EmptyRootUsesPathAsGiven(t *testing.T) {
	s, err := storage.NewLocal("", 0)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out.raw")

	require.NoError(t, s.Put(context.Background(), core.StorageKey{Path: path}, strings.NewReader("xyz")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(data))
}

func TestLocal_Cancelled(t *testing.T) {
	s, err := storage.NewLocal(t.TempDir(), 0)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Put(ctx, core.StorageKey{Path: "x"}, strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

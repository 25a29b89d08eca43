package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBlobStoreRoundTrip(t *testing.T) {
	fs, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	blob := []byte{0x01, 0x9f, 0x00, 0x42}
	require.NoError(t, fs.Put(ctx, "obj-1", blob))

	got, err := fs.Get(ctx, "obj-1")
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	ids, err := fs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"obj-1"}, ids)

	require.NoError(t, fs.Delete(ctx, "obj-1"))
	_, err = fs.Get(ctx, "obj-1")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error.
	require.NoError(t, fs.Delete(ctx, "obj-1"))
}

func TestFileBlobStoreRejectsPathTricks(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileBlobStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		require.Error(t, fs.Put(ctx, id, []byte("x")), "id %q", id)
		_, err := fs.Get(ctx, id)
		require.Error(t, err, "id %q", id)
	}
}

func TestFileBlobStorePermissions(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileBlobStore(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	require.NoError(t, fs.Put(context.Background(), "obj", []byte("ct")))

	info, err := os.Stat(filepath.Join(dir, "cache", "obj.enc"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

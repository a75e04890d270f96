package memfs

import (
	"context"
	"testing"

	"github.com/hupe1980/dfsenv/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_WriteReadRoundTrip(t *testing.T) {
	fs := New()
	ctx := context.Background()

	w, err := fs.Open(ctx, "/f", backend.WriteOnly)
	require.NoError(t, err)

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, w.Close())

	r, err := fs.Open(ctx, "/f", backend.ReadOnly)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 5)
	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	// At end of file: zero bytes, no error.
	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFS_AppendsVisibleToOpenReaders(t *testing.T) {
	fs := New()
	ctx := context.Background()

	w, err := fs.Open(ctx, "/f", backend.WriteOnly)
	require.NoError(t, err)
	_, err = w.Write([]byte("one"))
	require.NoError(t, err)

	r, err := fs.Open(ctx, "/f", backend.ReadOnly)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "one", string(buf[:n]))

	_, err = w.Write([]byte("two"))
	require.NoError(t, err)

	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "two", string(buf[:n]))
}

func TestFS_SeekAndTell(t *testing.T) {
	fs := New()
	ctx := context.Background()

	w, err := fs.Open(ctx, "/f", backend.WriteOnly)
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)

	r, err := fs.Open(ctx, "/f", backend.ReadOnly)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Seek(7))

	pos, err := r.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "789", string(buf[:n]))
}

func TestFS_RenameRefusesExistingTarget(t *testing.T) {
	fs := New()
	ctx := context.Background()

	for _, name := range []string{"/src", "/dst"} {
		w, err := fs.Open(ctx, name, backend.WriteOnly)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	err := fs.Rename(ctx, "/src", "/dst")
	require.ErrorIs(t, err, backend.ErrExist)

	require.NoError(t, fs.Delete(ctx, "/dst"))
	require.NoError(t, fs.Rename(ctx, "/src", "/dst"))

	ok, err := fs.Exists(ctx, "/src")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFS_RenameMovesDirectoryContents(t *testing.T) {
	fs := New()
	ctx := context.Background()

	require.NoError(t, fs.Mkdir(ctx, "/a"))
	w, err := fs.Open(ctx, "/a/f", backend.WriteOnly)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, fs.Rename(ctx, "/a", "/b"))

	ok, err := fs.Exists(ctx, "/b/f")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFS_DeleteDirectoryIsRecursive(t *testing.T) {
	fs := New()
	ctx := context.Background()

	require.NoError(t, fs.Mkdir(ctx, "/dir"))
	w, err := fs.Open(ctx, "/dir/f", backend.WriteOnly)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, fs.Delete(ctx, "/dir"))

	ok, err := fs.Exists(ctx, "/dir/f")
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, fs.Delete(ctx, "/dir"), backend.ErrNotExist)
}

func TestFS_DeleteRootIsRefused(t *testing.T) {
	fs := New()
	ctx := context.Background()

	w, err := fs.Open(ctx, "/f", backend.WriteOnly)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = fs.Delete(ctx, "/")
	require.Error(t, err)
	assert.NotErrorIs(t, err, backend.ErrNotExist)

	// The refused delete leaves contents untouched.
	ok, err := fs.Exists(ctx, "/f")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFS_ListIsSortedAndImmediate(t *testing.T) {
	fs := New()
	ctx := context.Background()

	require.NoError(t, fs.Mkdir(ctx, "/dir"))
	require.NoError(t, fs.Mkdir(ctx, "/dir/sub"))
	for _, name := range []string{"/dir/b", "/dir/a", "/dir/sub/nested"} {
		w, err := fs.Open(ctx, name, backend.WriteOnly)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	infos, err := fs.List(ctx, "/dir")
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"/dir/a", "/dir/b", "/dir/sub"}, names)

	_, err = fs.List(ctx, "/nope")
	require.ErrorIs(t, err, backend.ErrNotExist)
}

func TestFS_MkdirExisting(t *testing.T) {
	fs := New()
	ctx := context.Background()

	require.NoError(t, fs.Mkdir(ctx, "/dir"))
	require.ErrorIs(t, fs.Mkdir(ctx, "/dir"), backend.ErrExist)
}

func TestFS_StatFields(t *testing.T) {
	fs := New()
	ctx := context.Background()

	w, err := fs.Open(ctx, "/f", backend.WriteOnly)
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	info, err := fs.Stat(ctx, "/f")
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)
	assert.False(t, info.IsDir)
	assert.False(t, info.ModTime.IsZero())

	_, err = fs.Stat(ctx, "/nope")
	require.ErrorIs(t, err, backend.ErrNotExist)
}

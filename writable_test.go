package dfsenv

import (
	"strings"
	"testing"

	"github.com/hupe1980/dfsenv/backend"
	"github.com/hupe1980/dfsenv/backend/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritableFile_Lifecycle(t *testing.T) {
	env := NewEnv(memfs.New())

	w, err := env.NewWritableFile("/f")
	require.NoError(t, err)

	require.NoError(t, w.Append([]byte("hello ")))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Append([]byte("world")))
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	size, err := env.GetFileSize("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(len("hello world")), size)
}

func TestWritableFile_OperationsAfterClose(t *testing.T) {
	env := NewEnv(memfs.New())

	w, err := env.NewWritableFile("/f")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.ErrorIs(t, w.Append([]byte("x")), ErrClosed)
	require.ErrorIs(t, w.Flush(), ErrClosed)
	require.ErrorIs(t, w.Sync(), ErrClosed)

	// A second Close is a no-op.
	require.NoError(t, w.Close())
}

func TestWritableFile_ShortWriteIsError(t *testing.T) {
	fc := backend.NewFaultyClient(memfs.New())
	env := NewEnv(fc)

	fc.AddRule("/f", backend.Fault{ShortWrite: 3})

	w, err := env.NewWritableFile("/f")
	require.NoError(t, err)
	defer w.Close()

	err = w.Append([]byte("0123456789"))
	require.Error(t, err)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Contains(t, ioErr.Error(), "short write")
}

func TestWritableFile_WriteFailure(t *testing.T) {
	fc := backend.NewFaultyClient(memfs.New())
	env := NewEnv(fc)

	fc.AddRule("/f", backend.Fault{FailWrite: true})

	w, err := env.NewWritableFile("/f")
	require.NoError(t, err)
	defer w.Close()

	err = w.Append([]byte("x"))
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "/f", ioErr.Path)
}

func TestWritableFile_SyncChecksBothPrimitives(t *testing.T) {
	t.Run("flush-to-readers fails", func(t *testing.T) {
		fc := backend.NewFaultyClient(memfs.New())
		env := NewEnv(fc)
		fc.AddRule("/f", backend.Fault{FailFlush: true})

		w, err := env.NewWritableFile("/f")
		require.NoError(t, err)
		defer w.Close()

		var ioErr *IOError
		require.ErrorAs(t, w.Sync(), &ioErr)
	})

	t.Run("persist fails", func(t *testing.T) {
		fc := backend.NewFaultyClient(memfs.New())
		env := NewEnv(fc)
		fc.AddRule("/f", backend.Fault{FailSync: true})

		w, err := env.NewWritableFile("/f")
		require.NoError(t, err)
		defer w.Close()

		var ioErr *IOError
		require.ErrorAs(t, w.Sync(), &ioErr)
	})
}

func TestWritableFile_CloseFailureKeepsHandle(t *testing.T) {
	fc := backend.NewFaultyClient(memfs.New())
	env := NewEnv(fc)

	fc.AddRule("/f", backend.Fault{FailClose: true})

	w, err := env.NewWritableFile("/f")
	require.NoError(t, err)

	var ioErr *IOError
	require.ErrorAs(t, w.Close(), &ioErr)

	// The close did not succeed, so the handle is not terminal: appends are
	// still issued to the backend rather than refused as programming errors.
	require.NoError(t, w.Append([]byte("still open")))
}

func TestWritableFile_TruncatesExisting(t *testing.T) {
	env := NewEnv(memfs.New())
	writeFile(t, env, "/f", []byte(strings.Repeat("x", 100)))

	writeFile(t, env, "/f", []byte("short"))

	size, err := env.GetFileSize("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

package dfsenv

// SequentialFile reads a file front to back through a moving cursor.
//
// Read fills scratch with up to n bytes and returns the filled prefix of
// scratch; the caller owns scratch, and the adapter never retains it.
// At end of file Read returns an empty result and a nil error.
type SequentialFile interface {
	// Read reads up to n bytes at the current cursor into scratch, which
	// must be at least n bytes long.
	Read(n int, scratch []byte) ([]byte, error)
	// Skip advances the cursor by n bytes.
	Skip(n int64) error
	Close() error
}

// RandomAccessFile reads a file at caller-supplied offsets, independent of
// any cursor. Implementations must be safe for concurrent ReadAt calls if
// the underlying backend handle is.
type RandomAccessFile interface {
	// ReadAt reads up to n bytes starting at offset off into scratch,
	// which must be at least n bytes long.
	ReadAt(off int64, n int, scratch []byte) ([]byte, error)
	Close() error
}

// WritableFile is an append-only output file with explicit durability
// control. Once Close succeeds the instance is terminal; further calls
// return an error wrapping ErrClosed.
type WritableFile interface {
	// Append writes all of data, or fails. A backend short write surfaces
	// as an IOError; no partial-write retry is performed.
	Append(data []byte) error
	// Flush exists to satisfy the writable-file contract; writes at this
	// layer are unbuffered, so it always succeeds.
	Flush() error
	// Sync makes appended bytes visible to readers and then persists them,
	// in that order. The first failing step is returned.
	Sync() error
	Close() error
}

// RandomRWFile is the engine's in-place random read/write contract.
// No backend supported by this package can provide it; Env.NewRandomRWFile
// always fails with ErrNotSupported.
type RandomRWFile interface {
	ReadAt(off int64, n int, scratch []byte) ([]byte, error)
	WriteAt(off int64, data []byte) error
	Close() error
}

// FileLock is the engine's advisory file lock. The backend supports no
// atomic check-and-create, so locks hand out no mutual exclusion; see
// Env.LockFile.
type FileLock struct {
	path string
}

// Path returns the path the lock was requested for.
func (l *FileLock) Path() string { return l.path }

package dfsenv

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/hupe1980/dfsenv/backend"
)

// Env is the environment the storage engine calls into. It owns a single
// backend connection for its whole lifetime and hands every adapter it
// creates a shared reference to it. Env itself holds no other state and
// no locks.
type Env struct {
	client   backend.Client
	logger   *Logger
	threadID ThreadIDFunc
}

// NewEnv creates an environment over the given backend connection.
func NewEnv(client backend.Client, optFns ...Option) *Env {
	opts := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Env{
		client:   client,
		logger:   opts.logger,
		threadID: opts.threadID,
	}
}

// NewSequentialFile opens name for sequential reading.
func (e *Env) NewSequentialFile(name string) (SequentialFile, error) {
	return newReadableFile(e.client, name, e.logger)
}

// NewRandomAccessFile opens name for positional reading. The returned file
// also supports sequential reads; both capabilities sit on one handle.
func (e *Env) NewRandomAccessFile(name string) (RandomAccessFile, error) {
	return newReadableFile(e.client, name, e.logger)
}

// NewWritableFile creates (or truncates) name for append-only writing.
func (e *Env) NewWritableFile(name string) (WritableFile, error) {
	return newWritableFile(e.client, name, e.logger)
}

// NewRandomRWFile is unsupported: the backend exposes no safe in-place
// random-write primitive.
func (e *Env) NewRandomRWFile(name string) (RandomRWFile, error) {
	return nil, fmt.Errorf("%w: random read/write file %s", ErrNotSupported, name)
}

// NewLogSink creates a diagnostic log writer on a fresh writable file.
func (e *Env) NewLogSink(name string) (*LogSink, error) {
	f, err := e.NewWritableFile(name)
	if err != nil {
		return nil, err
	}
	return NewLogSink(f, e.threadID), nil
}

// FileExists probes whether name exists. A failing backend probe reads as
// "does not exist"; the boolean contract leaves no channel for the error,
// and this layer keeps that ambiguity rather than inventing one.
func (e *Env) FileExists(name string) bool {
	ok, err := e.client.Exists(context.Background(), name)
	return err == nil && ok
}

// GetChildren lists the final path segment of every entry in dir. Listing
// a directory that does not exist is not a failure: the result is empty.
// A listing failure on an existing directory is an unexpected backend
// failure and is returned as such.
func (e *Env) GetChildren(dir string) ([]string, error) {
	ok, err := e.client.Exists(context.Background(), dir)
	if err != nil {
		return nil, fmt.Errorf("%w: existence probe for %s: %w", ErrBackendUnexpected, dir, err)
	}
	if !ok {
		return []string{}, nil
	}

	infos, err := e.client.List(context.Background(), dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrBackendUnexpected, dir, err)
	}
	children := make([]string, 0, len(infos))
	for _, info := range infos {
		children = append(children, path.Base(info.Name))
	}
	return children, nil
}

// DeleteFile removes name.
func (e *Env) DeleteFile(name string) error {
	if err := e.client.Delete(context.Background(), name); err != nil {
		return ioError(name, err)
	}
	return nil
}

// DeleteDir removes a directory. The backend's delete primitive handles
// files and directories alike, so this is DeleteFile under another name.
func (e *Env) DeleteDir(name string) error {
	return e.DeleteFile(name)
}

// CreateDir creates name unconditionally; the backend decides whether an
// existing path is an error.
func (e *Env) CreateDir(name string) error {
	if err := e.client.Mkdir(context.Background(), name); err != nil {
		return ioError(name, err)
	}
	return nil
}

// CreateDirIfMissing creates name only if it does not already exist.
// The check and the create are two backend calls; a concurrent creator can
// slip between them, and this layer does not detect that.
func (e *Env) CreateDirIfMissing(name string) error {
	ok, err := e.client.Exists(context.Background(), name)
	if err == nil && ok {
		return nil
	}
	return e.CreateDir(name)
}

// GetFileSize returns the current size of name.
func (e *Env) GetFileSize(name string) (int64, error) {
	info, err := e.client.Stat(context.Background(), name)
	if err != nil {
		return 0, ioError(name, err)
	}
	return info.Size, nil
}

// GetFileModificationTime returns the last modification time of name.
func (e *Env) GetFileModificationTime(name string) (time.Time, error) {
	info, err := e.client.Stat(context.Background(), name)
	if err != nil {
		return time.Time{}, ioError(name, err)
	}
	return info.ModTime, nil
}

// RenameFile moves src to dst, overwriting dst if it exists.
//
// The backend refuses to rename onto an existing path, so dst is deleted
// first, ignoring the outcome, and then src is renamed. The sequence is
// not atomic: a crash between the delete and the rename leaves neither the
// old dst nor a valid new one.
func (e *Env) RenameFile(src, dst string) error {
	_ = e.client.Delete(context.Background(), dst)
	if err := e.client.Rename(context.Background(), src, dst); err != nil {
		return ioError(src, err)
	}
	return nil
}

// LockFile accepts the lock request and locks nothing: the backend has no
// atomic check-and-create to build an advisory lock on. Callers relying on
// cross-process mutual exclusion through this method receive none.
func (e *Env) LockFile(name string) (*FileLock, error) {
	return &FileLock{path: name}, nil
}

// UnlockFile releases a lock obtained from LockFile, which held nothing.
func (e *Env) UnlockFile(l *FileLock) error {
	return nil
}

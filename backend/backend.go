package backend

import (
	"context"
	"errors"
	"time"
)

// ErrNotExist is returned when a path does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotExist)` from Open, Stat and List on missing paths.
var ErrNotExist = errors.New("backend: path does not exist")

// ErrExist is returned by Rename when the target path already exists.
// Remote filesystems of this kind refuse to rename onto an existing path;
// callers that want overwrite semantics must delete the target first.
var ErrExist = errors.New("backend: path already exists")

// OpenMode selects how a file is opened.
type OpenMode int

const (
	// ReadOnly opens an existing file for reading.
	ReadOnly OpenMode = iota
	// WriteOnly creates (or truncates) a file for append-style writing.
	WriteOnly
)

// FileInfo describes a file or directory.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// File is an open handle on the backend.
//
// Read may return fewer bytes than requested without an error; callers that
// need to distinguish end-of-file from a failed read must compare the handle
// position (Tell) against a fresh Stat of the path. ReadAt is independent of
// the handle position.
type File interface {
	// Read reads up to len(p) bytes at the current position.
	Read(p []byte) (int, error)
	// ReadAt reads up to len(p) bytes starting at offset off.
	ReadAt(p []byte, off int64) (int, error)
	// Write appends len(p) bytes. A short write without an error is legal
	// at this level; callers decide how to treat it.
	Write(p []byte) (int, error)
	// Flush makes written bytes visible to new readers (hflush).
	Flush() error
	// Sync persists written bytes to durable storage (hsync).
	Sync() error
	// Seek sets the current position for Read.
	Seek(offset int64) error
	// Tell reports the current position.
	Tell() (int64, error)
	// Close releases the handle.
	Close() error
}

// Client is one connection to a remote filesystem instance.
//
// Implementations must be safe for concurrent use; the adapters above this
// package share a single Client across all open files and perform no
// locking of their own.
type Client interface {
	// Open opens the named file in the given mode.
	Open(ctx context.Context, name string, mode OpenMode) (File, error)
	// Stat returns metadata for the named file or directory.
	Stat(ctx context.Context, name string) (FileInfo, error)
	// Exists probes whether the named path exists.
	Exists(ctx context.Context, name string) (bool, error)
	// List returns the entries of the named directory.
	List(ctx context.Context, dir string) ([]FileInfo, error)
	// Delete removes the named file, or the named directory and its contents.
	Delete(ctx context.Context, name string) error
	// Rename moves src to dst. It fails with ErrExist if dst exists.
	Rename(ctx context.Context, src, dst string) error
	// Mkdir creates the named directory.
	Mkdir(ctx context.Context, name string) error
}

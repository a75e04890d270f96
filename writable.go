package dfsenv

import (
	"context"
	"fmt"

	"github.com/hupe1980/dfsenv/backend"
)

// writableFile is an append-only handle on one backend file. Close nulls
// the handle; the instance is terminal after that.
type writableFile struct {
	client backend.Client
	name   string
	fh     backend.File // nil once Close has succeeded
	logger *Logger
}

var _ WritableFile = (*writableFile)(nil)

func newWritableFile(client backend.Client, name string, logger *Logger) (*writableFile, error) {
	logger = logger.WithPath(name)
	logger.Debug("opening writable file")
	fh, err := client.Open(context.Background(), name, backend.WriteOnly)
	if err != nil {
		return nil, ioError(name, err)
	}
	return &writableFile{
		client: client,
		name:   name,
		fh:     fh,
		logger: logger,
	}, nil
}

// Append writes all of data in one backend call. The backend write is
// assumed all-or-nothing per call, so a short write is unrecoverable here
// and surfaces as an IO error.
func (f *writableFile) Append(data []byte) error {
	if f.fh == nil {
		return ioError(f.name, ErrClosed)
	}
	n, err := f.fh.Write(data)
	if err != nil {
		return ioError(f.name, err)
	}
	if n != len(data) {
		return ioError(f.name, fmt.Errorf("short write: %d of %d bytes", n, len(data)))
	}
	return nil
}

// Flush is a contract no-op: writes at this layer are unbuffered.
func (f *writableFile) Flush() error {
	if f.fh == nil {
		return ioError(f.name, ErrClosed)
	}
	return nil
}

// Sync flushes appended bytes to readers, then persists them. Either step
// failing returns an IO error without attempting the other.
func (f *writableFile) Sync() error {
	if f.fh == nil {
		return ioError(f.name, ErrClosed)
	}
	f.logger.Debug("syncing writable file")
	if err := f.fh.Flush(); err != nil {
		return ioError(f.name, err)
	}
	if err := f.fh.Sync(); err != nil {
		return ioError(f.name, err)
	}
	return nil
}

// Close closes the backend handle. On success the instance becomes
// terminal. A second Close is a no-op.
func (f *writableFile) Close() error {
	if f.fh == nil {
		return nil
	}
	f.logger.Debug("closing writable file")
	if err := f.fh.Close(); err != nil {
		return ioError(f.name, err)
	}
	f.fh = nil
	return nil
}

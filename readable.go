package dfsenv

import (
	"context"
	"fmt"

	"github.com/hupe1980/dfsenv/backend"
)

// readableFile presents one open backend file as both a sequential stream
// and a random-access store. The same instance satisfies SequentialFile
// and RandomAccessFile.
type readableFile struct {
	client backend.Client
	name   string
	fh     backend.File
	logger *Logger
}

var (
	_ SequentialFile   = (*readableFile)(nil)
	_ RandomAccessFile = (*readableFile)(nil)
)

func newReadableFile(client backend.Client, name string, logger *Logger) (*readableFile, error) {
	logger = logger.WithPath(name)
	logger.Debug("opening readable file")
	fh, err := client.Open(context.Background(), name, backend.ReadOnly)
	if err != nil {
		return nil, ioError(name, err)
	}
	return &readableFile{
		client: client,
		name:   name,
		fh:     fh,
		logger: logger,
	}, nil
}

// Read reads up to n bytes at the current cursor. A short read is end of
// file only if the cursor sits at the file's current size, checked with a
// fresh metadata lookup; otherwise it is an IO error. The extra round-trip
// per short read buys correctness over chattiness.
func (f *readableFile) Read(n int, scratch []byte) ([]byte, error) {
	m, err := f.fh.Read(scratch[:n])
	if err != nil {
		return scratch[:m], ioError(f.name, err)
	}
	if m < n {
		eof, err := f.atEOF()
		if err != nil {
			return scratch[:m], err
		}
		if !eof {
			return scratch[:m], ioError(f.name, fmt.Errorf("short read: %d of %d bytes", m, n))
		}
	}
	return scratch[:m], nil
}

// ReadAt reads up to n bytes at offset off, independent of the cursor.
// A backend read error is always a hard error, never end of file.
func (f *readableFile) ReadAt(off int64, n int, scratch []byte) ([]byte, error) {
	m, err := f.fh.ReadAt(scratch[:n], off)
	if err != nil {
		return scratch[:0], ioError(f.name, err)
	}
	return scratch[:m], nil
}

// Skip advances the cursor by reading the current position and seeking.
func (f *readableFile) Skip(n int64) error {
	current, err := f.fh.Tell()
	if err != nil {
		return ioError(f.name, err)
	}
	if err := f.fh.Seek(current + n); err != nil {
		return ioError(f.name, err)
	}
	return nil
}

func (f *readableFile) Close() error {
	f.logger.Debug("closing readable file")
	if err := f.fh.Close(); err != nil {
		return ioError(f.name, err)
	}
	return nil
}

// atEOF reports whether the cursor sits at the file's current size. The
// file is open, so a failing size lookup is an unexpected backend failure.
func (f *readableFile) atEOF() (bool, error) {
	current, err := f.fh.Tell()
	if err != nil {
		return false, ioError(f.name, err)
	}
	info, err := f.client.Stat(context.Background(), f.name)
	if err != nil {
		return false, ioError(f.name, fmt.Errorf("%w: size lookup for open file: %w", ErrBackendUnexpected, err))
	}
	return current == info.Size, nil
}

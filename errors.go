package dfsenv

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported is returned for operations the backend fundamentally
	// cannot perform, such as in-place random writes.
	ErrNotSupported = errors.New("dfsenv: operation not supported")

	// ErrClosed is returned when an operation is issued on a file whose
	// Close already succeeded.
	ErrClosed = errors.New("dfsenv: file already closed")

	// ErrBackendUnexpected marks backend failures in places where the file
	// contract assumed success was the only possibility (for example a size
	// lookup on a file that must exist because it is open). Hosts can treat
	// these as fatal or degrade; the adapter never aborts on its own.
	//
	// The original underlying error can be accessed via errors.Unwrap.
	ErrBackendUnexpected = errors.New("dfsenv: unexpected backend failure")
)

// IOError is the uniform failure kind for backend-call failures, short
// writes and failed metadata lookups. It carries the path as context and
// wraps the underlying backend error.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ioError is the single translation point from backend failures into the
// engine's status taxonomy; every backend call site maps through it.
func ioError(path string, err error) error {
	return &IOError{Path: path, Err: err}
}

package dfsenv

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/dfsenv/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOError_CarriesContextAndCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := ioError("/db/MANIFEST", cause)

	assert.Equal(t, "/db/MANIFEST: connection reset", err.Error())

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "/db/MANIFEST", ioErr.Path)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestIOError_WrappingPreservesSentinels(t *testing.T) {
	assert.ErrorIs(t, ioError("/f", ErrClosed), ErrClosed)
	assert.ErrorIs(t, ioError("/f", backend.ErrNotExist), backend.ErrNotExist)
	assert.ErrorIs(t,
		ioError("/f", fmt.Errorf("%w: size lookup for open file: %w", ErrBackendUnexpected, fmt.Errorf("timeout"))),
		ErrBackendUnexpected,
	)
}

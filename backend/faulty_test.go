package backend_test

import (
	"context"
	"testing"

	"github.com/hupe1980/dfsenv/backend"
	"github.com/hupe1980/dfsenv/backend/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultyClient_RulesMatchByPattern(t *testing.T) {
	fc := backend.NewFaultyClient(memfs.New())
	ctx := context.Background()

	fc.AddRule("MANIFEST", backend.Fault{FailOpen: true})

	_, err := fc.Open(ctx, "/db/MANIFEST-000001", backend.WriteOnly)
	require.Error(t, err)

	w, err := fc.Open(ctx, "/db/000002.log", backend.WriteOnly)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestFaultyClient_LatestMatchingRuleWins(t *testing.T) {
	fc := backend.NewFaultyClient(memfs.New())
	ctx := context.Background()

	// Both patterns match the path; the later rule overrides the earlier one.
	fc.AddRule("MANIFEST", backend.Fault{FailOpen: true})
	fc.AddRule("/db/", backend.Fault{})

	w, err := fc.Open(ctx, "/db/MANIFEST-000001", backend.WriteOnly)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	fc.AddRule("000001", backend.Fault{FailStat: true})
	_, err = fc.Stat(ctx, "/db/MANIFEST-000001")
	require.Error(t, err)
}

func TestFaultyClient_ShortReadAndWrite(t *testing.T) {
	fc := backend.NewFaultyClient(memfs.New())
	ctx := context.Background()

	w, err := fc.Open(ctx, "/f", backend.WriteOnly)
	require.NoError(t, err)
	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	fc.AddRule("/f", backend.Fault{ShortRead: 4, ShortWrite: 2})

	r, err := fc.Open(ctx, "/f", backend.ReadOnly)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 10)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	w, err = fc.Open(ctx, "/f", backend.WriteOnly)
	require.NoError(t, err)
	defer w.Close()

	n, err = w.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFaultyClient_CountsCalls(t *testing.T) {
	fc := backend.NewFaultyClient(memfs.New())
	ctx := context.Background()

	require.NoError(t, fc.Mkdir(ctx, "/dir"))
	require.NoError(t, fc.Mkdir(ctx, "/dir2"))
	_, err := fc.Exists(ctx, "/dir")
	require.NoError(t, err)

	assert.Equal(t, 2, fc.Calls("mkdir"))
	assert.Equal(t, 1, fc.Calls("exists"))
	assert.Zero(t, fc.Calls("delete"))
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPebbleStore_ApplyBatchAndScan(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend(t)

	require.NoError(t, backend.ApplyBatch(ctx, []Row{
		{Key: "C:b/", Value: []byte("2")},
		{Key: "C:a/", Value: []byte("1")},
	}, nil))

	var keys []string
	require.NoError(t, backend.ScanRange(ctx, "C:", "C;", func(key string, value []byte) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"C:a/", "C:b/"}, keys, "iteration is byte ordered regardless of insert order")
}

func TestPebbleStore_BatchAppliesDeletesAndPuts(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend(t)

	require.NoError(t, backend.ApplyBatch(ctx, []Row{{Key: "k", Value: []byte("old")}}, nil))
	require.NoError(t, backend.ApplyBatch(ctx, []Row{{Key: "k2", Value: []byte("new")}}, []string{"k"}))

	found, err := backend.ContainsKey(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = backend.ContainsKey(ctx, "k2")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestPebbleStore_ScanRangeBounds(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend(t)

	require.NoError(t, backend.ApplyBatch(ctx, []Row{
		{Key: "C:a/", Value: []byte("in")},
		{Key: "C:a/b/", Value: []byte("in")},
		{Key: "C:a0/", Value: []byte("out")},
		{Key: "Q:1", Value: []byte("out")},
	}, nil))

	var keys []string
	require.NoError(t, backend.ScanRange(ctx, "C:a/", "C:a0", func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"C:a/", "C:a/b/"}, keys)
}

func TestPebbleStore_ContainsKeyMissing(t *testing.T) {
	backend := newMemBackend(t)

	found, err := backend.ContainsKey(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krasnovkir/go-sync-cache/internal/config"
	"github.com/krasnovkir/go-sync-cache/internal/logger"
)

// newMemBackend opens an in-memory pebble store for tests.
func newMemBackend(t *testing.T) BatchStore {
	t.Helper()
	backend, err := NewConnectPebble(context.Background(), config.DB{Driver: config.DriverPebble, Path: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func TestTransactionalStore_CommitRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionalStore(newMemBackend(t), false, logger.Nop())

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.Put("C:a/", []byte("1")))
	require.NoError(t, s.Put("C:a/b/", []byte("2")))
	require.NoError(t, s.Put("C:z/", []byte("3")))
	require.NoError(t, s.EndTransaction(ctx))

	keys, err := s.KeysBetween(ctx, "C:", "C;")
	require.NoError(t, err)
	assert.Equal(t, []string{"C:a/", "C:a/b/", "C:z/"}, keys, "committed keys come back in byte order")

	values, err := s.ValuesBetween(ctx, "C:a/", "C:a0")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("1"), []byte("2")}, values)
}

func TestTransactionalStore_MutationOutsideTransaction(t *testing.T) {
	s := NewTransactionalStore(newMemBackend(t), false, logger.Nop())

	assert.ErrorIs(t, s.Put("k", nil), ErrInvariantViolation)
	assert.ErrorIs(t, s.Put("k", nil), ErrNoOpenTransaction)
	assert.ErrorIs(t, s.Delete("k"), ErrInvariantViolation)
	assert.ErrorIs(t, s.DeleteAll([]string{"k"}), ErrInvariantViolation)
	assert.ErrorIs(t, s.EndTransaction(context.Background()), ErrInvariantViolation)
}

func TestTransactionalStore_DoubleBegin(t *testing.T) {
	s := NewTransactionalStore(newMemBackend(t), false, logger.Nop())

	require.NoError(t, s.BeginTransaction())
	err := s.BeginTransaction()
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.ErrorIs(t, err, ErrTransactionAlreadyOpen)
}

func TestTransactionalStore_StrictModePanics(t *testing.T) {
	s := NewTransactionalStore(newMemBackend(t), true, logger.Nop())

	assert.Panics(t, func() { _ = s.Put("k", nil) })
}

func TestTransactionalStore_DeleteThenPutSameKey(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionalStore(newMemBackend(t), false, logger.Nop())

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.Put("k", []byte("old")))
	require.NoError(t, s.EndTransaction(ctx))

	// within one transaction the last decision for a key wins
	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.Delete("k"))
	require.NoError(t, s.Put("k", []byte("new")))
	require.NoError(t, s.EndTransaction(ctx))

	values, err := s.ValuesBetween(ctx, "k", "l")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, []byte("new"), values[0])
}

func TestTransactionalStore_ReadsIgnoreOpenBuffer(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionalStore(newMemBackend(t), false, logger.Nop())

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.Put("C:a/", []byte("1")))

	keys, err := s.KeysBetween(ctx, "C:", "C;")
	require.NoError(t, err)
	assert.Empty(t, keys, "scans observe committed state only")

	require.NoError(t, s.EndTransaction(ctx))

	keys, err = s.KeysBetween(ctx, "C:", "C;")
	require.NoError(t, err)
	assert.Equal(t, []string{"C:a/"}, keys)
}

func TestTransactionalStore_AbortDiscardsBuffer(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionalStore(newMemBackend(t), false, logger.Nop())

	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.Put("C:a/", []byte("1")))
	require.NoError(t, s.AbortTransaction())
	assert.False(t, s.InTransaction())

	keys, err := s.KeysBetween(ctx, "C:", "C;")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// a fresh transaction can be opened after an abort
	require.NoError(t, s.BeginTransaction())
	require.NoError(t, s.EndTransaction(ctx))

	assert.ErrorIs(t, s.AbortTransaction(), ErrNoOpenTransaction)
}

func TestTransactionalStore_InTransaction(t *testing.T) {
	s := NewTransactionalStore(newMemBackend(t), false, logger.Nop())

	assert.False(t, s.InTransaction())
	require.NoError(t, s.BeginTransaction())
	assert.True(t, s.InTransaction())
	require.NoError(t, s.EndTransaction(context.Background()))
	assert.False(t, s.InTransaction())
}

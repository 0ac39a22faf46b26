package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/krasnovkir/go-sync-cache/internal/logger"
)

// TransactionalStore wraps a [BatchStore] with an explicit transaction
// buffer. Mutations are recorded in memory between BeginTransaction and
// EndTransaction and committed as one atomic batch; only EndTransaction
// performs I/O.
//
// At most one transaction may be open at a time, and every mutating call
// outside a transaction is an invariant violation. Range reads always go to
// the committed store and do not observe the open transaction's buffer —
// read-your-own-writes is deliberately not guaranteed mid-transaction.
type TransactionalStore struct {
	store  BatchStore
	logger *logger.Logger
	strict bool

	mu         sync.Mutex
	open       bool
	puts       map[string][]byte
	tombstones map[string]struct{}
}

// NewTransactionalStore wraps store. With strict set, invariant violations
// panic instead of being returned, which is the recommended mode for tests
// and debug builds.
func NewTransactionalStore(store BatchStore, strict bool, log *logger.Logger) *TransactionalStore {
	return &TransactionalStore{
		store:  store,
		logger: log,
		strict: strict,
	}
}

// BeginTransaction opens the transaction buffer. Opening a second
// transaction while one is active is an invariant violation.
func (s *TransactionalStore) BeginTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return s.violation(ErrTransactionAlreadyOpen)
	}
	s.open = true
	s.puts = map[string][]byte{}
	s.tombstones = map[string]struct{}{}
	return nil
}

// Put records an intended write in the open transaction's buffer.
func (s *TransactionalStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return s.violation(ErrNoOpenTransaction)
	}
	delete(s.tombstones, key)
	s.puts[key] = value
	return nil
}

// Delete records an intended removal in the open transaction's buffer.
func (s *TransactionalStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return s.violation(ErrNoOpenTransaction)
	}
	delete(s.puts, key)
	s.tombstones[key] = struct{}{}
	return nil
}

// DeleteAll records removals for every given key.
func (s *TransactionalStore) DeleteAll(keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return s.violation(ErrNoOpenTransaction)
	}
	for _, key := range keys {
		delete(s.puts, key)
		s.tombstones[key] = struct{}{}
	}
	return nil
}

// EndTransaction commits the buffered mutations to the underlying store as
// a single atomic batch and clears the buffer. It returns once the batch is
// durably applied, or propagates the store's I/O failure, in which case the
// transaction is considered rolled back.
func (s *TransactionalStore) EndTransaction(ctx context.Context) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return s.violation(ErrNoOpenTransaction)
	}

	puts := make([]Row, 0, len(s.puts))
	for key, value := range s.puts {
		puts = append(puts, Row{Key: key, Value: value})
	}
	deletes := make([]string, 0, len(s.tombstones))
	for key := range s.tombstones {
		deletes = append(deletes, key)
	}

	s.open = false
	s.puts = nil
	s.tombstones = nil
	s.mu.Unlock()

	if len(puts) == 0 && len(deletes) == 0 {
		return nil
	}

	if err := s.store.ApplyBatch(ctx, puts, deletes); err != nil {
		s.logger.Err(err).
			Str("func", "TransactionalStore.EndTransaction").
			Int("puts", len(puts)).
			Int("deletes", len(deletes)).
			Msg("failed to commit transaction batch")
		return fmt.Errorf("%w: %w", ErrApplyingBatch, err)
	}
	return nil
}

// AbortTransaction discards the open transaction's buffer without touching
// the underlying store.
func (s *TransactionalStore) AbortTransaction() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return s.violation(ErrNoOpenTransaction)
	}
	s.open = false
	s.puts = nil
	s.tombstones = nil
	return nil
}

// InTransaction reports whether a transaction is currently open.
func (s *TransactionalStore) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// KeysBetween returns all committed keys with start <= key < end in
// ascending byte order.
func (s *TransactionalStore) KeysBetween(ctx context.Context, start, end string) ([]string, error) {
	var keys []string
	err := s.store.ScanRange(ctx, start, end, func(key string, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRange, err)
	}
	return keys, nil
}

// ValuesBetween returns copies of all committed values with
// start <= key < end, in ascending key order.
func (s *TransactionalStore) ValuesBetween(ctx context.Context, start, end string) ([][]byte, error) {
	var values [][]byte
	err := s.store.ScanRange(ctx, start, end, func(_ string, value []byte) error {
		copied := make([]byte, len(value))
		copy(copied, value)
		values = append(values, copied)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRange, err)
	}
	return values, nil
}

// RangeBetween streams committed rows with start <= key < end to fn in
// ascending key order. The value slice is only valid during the callback.
func (s *TransactionalStore) RangeBetween(ctx context.Context, start, end string, fn func(key string, value []byte) error) error {
	if err := s.store.ScanRange(ctx, start, end, fn); err != nil {
		return fmt.Errorf("%w: %w", ErrScanningRange, err)
	}
	return nil
}

// ContainsKey reports whether the committed store holds the key.
func (s *TransactionalStore) ContainsKey(ctx context.Context, key string) (bool, error) {
	return s.store.ContainsKey(ctx, key)
}

// Close releases the underlying store.
func (s *TransactionalStore) Close() error {
	return s.store.Close()
}

// violation surfaces an invariant break: wrapped error in lenient mode,
// panic in strict mode.
func (s *TransactionalStore) violation(err error) error {
	wrapped := fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	s.logger.Error().
		Str("func", "TransactionalStore.violation").
		Msg(wrapped.Error())
	if s.strict {
		panic(wrapped)
	}
	return wrapped
}

package store

import "context"

// Row is one committed key/value pair of the underlying store.
type Row struct {
	Key   string
	Value []byte
}

// BatchStore is the contract required from an embedded ordered key-value
// store. Implementations must compare keys byte-wise for iteration order,
// apply a whole batch atomically, and have it durably committed when
// ApplyBatch returns.
//
// Two implementations exist: a pebble-backed store (the default) and an
// SQLite-backed store. Exactly one engine instance may own a given store
// region; multi-process sharing is not supported.
type BatchStore interface {
	// ApplyBatch atomically applies all puts and deletes as one durable
	// batch. Keys never appear in both lists.
	ApplyBatch(ctx context.Context, puts []Row, deletes []string) error

	// ScanRange streams committed rows with start <= key < end in
	// ascending byte order. The value slice passed to fn is only valid for
	// the duration of the call. A non-nil error from fn stops the scan and
	// is returned as is.
	ScanRange(ctx context.Context, start, end string, fn func(key string, value []byte) error) error

	// ContainsKey reports whether the committed store holds the key.
	ContainsKey(ctx context.Context, key string) (bool, error)

	// Close releases the store. The store must not be used afterwards.
	Close() error
}

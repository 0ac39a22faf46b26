package store

import "errors"

// Invariant-violation errors. These signal programmer misuse or state drift
// that the engine cannot self-heal; continuing past them risks silent data
// corruption. In strict mode the engine panics instead of returning them.
// Callers should match with [errors.Is] against [ErrInvariantViolation].
var (
	// ErrInvariantViolation is the common ancestor of every invariant
	// error; all of the sentinels below are wrapped in it before being
	// returned.
	ErrInvariantViolation = errors.New("cache invariant violation")

	// ErrTransactionAlreadyOpen is returned by BeginTransaction when a
	// transaction is already open on the wrapper.
	ErrTransactionAlreadyOpen = errors.New("transaction is already open")

	// ErrNoOpenTransaction is returned by mutating wrapper calls and by
	// EndTransaction when no transaction is open.
	ErrNoOpenTransaction = errors.New("no open transaction")

	// ErrPruneOutsideTransaction is returned by PruneCache when it is
	// invoked without an open transaction.
	ErrPruneOutsideTransaction = errors.New("prune requires an open transaction")

	// ErrCacheOutsidePruneRoot is returned when a complete cache node is
	// found strictly above the declared prune root, meaning cached data
	// extends outside the boundary pruning was scoped to.
	ErrCacheOutsidePruneRoot = errors.New("cached data extends above the prune root")

	// ErrPruneForestConflict is returned when the prune forest neither
	// prunes nor keeps a cached subtree, meaning the cache and the
	// tracked-query bookkeeping have drifted apart.
	ErrPruneForestConflict = errors.New("prune forest does not cover cached subtree")
)

// Storage I/O and codec errors. These are wrapped around the underlying
// failure with fmt.Errorf("%w: %w", ...) and propagate to the caller of the
// operation that triggered them; no automatic retry is performed.
var (
	// ErrApplyingBatch is returned when committing a put/delete batch to
	// the underlying store fails.
	ErrApplyingBatch = errors.New("failed to apply batch to store")

	// ErrScanningRange is returned when a range scan against the committed
	// store fails.
	ErrScanningRange = errors.New("failed to scan key range")

	// ErrDecodingRow is returned when a persisted row cannot be decoded
	// into its in-memory shape (malformed key or value).
	ErrDecodingRow = errors.New("failed to decode persisted row")

	// ErrEncodingValue is returned when a tree value, operation or tracked
	// query cannot be serialized for persistence.
	ErrEncodingValue = errors.New("failed to encode value")
)

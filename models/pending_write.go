package models

// PendingWrite is a client-side write that has not yet been acknowledged by
// the server. One row is persisted per write, keyed by the caller-assigned
// id; the row is removed once the server acknowledges or rejects the write.
type PendingWrite struct {
	// ID is the caller-assigned unique identifier, roughly monotonic per
	// session.
	ID int64

	// Operation is the recorded mutation, replayed on top of the server
	// cache after a restart.
	Operation Operation
}

package service

import "errors"

// Sentinel errors returned by the tracked-query manager. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrQueryNotFound is returned when an operation targets a tracked
	// query id that is not known to the manager.
	ErrQueryNotFound = errors.New("tracked query not found")
)

// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface, a Workers aggregate that allows
// running multiple workers in a unified way, and the concrete maintenance
// workers of the cache client.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to block until ctx is cancelled or spawn
// goroutines internally.
type Worker interface {
	Run(ctx context.Context)
}

// QueryPruner is the slice of the tracked-query service the prune worker
// depends on.
type QueryPruner interface {
	PruneOldQueries(ctx context.Context, limit int) (int, error)
}

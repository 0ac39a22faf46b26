package workers

import (
	"context"
	"time"

	"github.com/krasnovkir/go-sync-cache/internal/logger"
)

// Workers aggregates background workers and runs them together.
type Workers struct {
	workers []Worker
}

// NewWorkers bundles the given workers.
func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every worker in order. Each Run call blocks until the worker
// returns, so long-lived workers should spawn their own goroutines or be
// run with a cancellable context.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}

// queryPruneWorker periodically evicts stale tracked queries and their
// cached subtrees.
type queryPruneWorker struct {
	pruner   QueryPruner
	interval time.Duration
	limit    int
	logger   *logger.Logger
}

// NewQueryPruneWorker builds a worker that calls PruneOldQueries every
// interval, evicting at most limit queries per tick.
func NewQueryPruneWorker(pruner QueryPruner, interval time.Duration, limit int, log *logger.Logger) Worker {
	return &queryPruneWorker{
		pruner:   pruner,
		interval: interval,
		limit:    limit,
		logger:   log,
	}
}

// Run blocks until ctx is cancelled, pruning on every tick.
func (w *queryPruneWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := w.pruner.PruneOldQueries(ctx, w.limit)
			if err != nil {
				w.logger.Error().Err(err).
					Str("func", "queryPruneWorker.Run").
					Msg("prune tick failed")
				continue
			}
			if pruned > 0 {
				w.logger.Debug().
					Str("func", "queryPruneWorker.Run").
					Int("pruned", pruned).
					Msg("evicted stale queries")
			}
		}
	}
}

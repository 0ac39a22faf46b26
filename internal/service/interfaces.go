package service

import (
	"context"
	"time"

	"github.com/krasnovkir/go-sync-cache/models"
)

// CacheEngine is the slice of the persistence engine the tracked-query
// manager depends on. Satisfied by [store.CachePersistence].
type CacheEngine interface {
	LoadTrackedQueries(ctx context.Context) ([]models.TrackedQuery, error)
	SaveTrackedQuery(query models.TrackedQuery) error
	DeleteTrackedQuery(id int64) error
	ResetPreviouslyActiveTrackedQueries(ctx context.Context, now time.Time) error
	BeginTransaction() error
	EndTransaction(ctx context.Context) error
	AbortTransaction() error
	SetTransactionSuccessful()
	PruneCache(ctx context.Context, root models.Path, forest *models.PruneForest) error
	EstimatedServerCacheSize() int64
}

// TrackedQueryService manages the lifecycle of tracked queries on top of
// the persistence engine: registration, activation bookkeeping and
// LRU-style eviction of no-longer-tracked subtrees.
type TrackedQueryService interface {
	// EnsureTracked returns the tracked query for path, creating and
	// persisting a new active record when none exists yet.
	EnsureTracked(ctx context.Context, path models.Path) (models.TrackedQuery, error)

	// SetQueryActive marks the query as actively syncing.
	SetQueryActive(ctx context.Context, id int64) error

	// SetQueryInactive marks the query inactive and stamps its last use.
	SetQueryInactive(ctx context.Context, id int64) error

	// TrackedQuery returns the cached record for id.
	TrackedQuery(id int64) (models.TrackedQuery, bool)

	// PruneOldQueries evicts up to limit least-recently-used inactive
	// queries, pruning their cached subtrees while keeping everything
	// still tracked. Returns the number of queries pruned.
	PruneOldQueries(ctx context.Context, limit int) (int, error)
}

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/krasnovkir/go-sync-cache/internal/config"
	"github.com/krasnovkir/go-sync-cache/internal/logger"
	"github.com/krasnovkir/go-sync-cache/models"
)

// CachePersistence is the persistence engine: it owns the in-memory server
// cache, applies incoming tree operations to it, flushes changes to the
// transactional store with a debounce delay, and prunes subtrees that are
// no longer tracked.
//
// One engine instance exclusively owns one store region. Callers are
// expected to serialize mutating calls; the only background activity is the
// debounced flush, which is guarded so at most one flush body runs at a
// time.
type CachePersistence struct {
	store  *TransactionalStore
	logger *logger.Logger

	flushInterval time.Duration
	strict        bool

	// mu guards the cache, the flush baseline and the timer bookkeeping.
	mu           sync.Mutex
	serverCache  *models.TreeNode
	lastFlushed  map[string][32]byte
	flushTimer   *time.Timer
	flushPending bool
	closed       bool

	// flushMu serializes flush bodies; at most one flush touches the store
	// at a time even if the timer re-arms concurrently with Close.
	flushMu sync.Mutex
}

// NewCachePersistence constructs the engine over an already-open
// transactional store and loads the persisted server cache into memory.
// After construction the in-memory cache and the flush baseline are
// identical.
func NewCachePersistence(ctx context.Context, store *TransactionalStore, cfg config.Cache, log *logger.Logger) (*CachePersistence, error) {
	sessionLog := &logger.Logger{Logger: log.With().Str("cache_session", uuid.NewString()).Logger()}

	engine := &CachePersistence{
		store:         store,
		logger:        sessionLog,
		flushInterval: cfg.FlushInterval,
		strict:        cfg.StrictInvariants,
		lastFlushed:   map[string][32]byte{},
	}

	if err := engine.loadServerCache(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}

// loadServerCache scans the whole server-cache key range and folds the rows
// into a fresh sparse tree. Runs once at construction.
func (p *CachePersistence) loadServerCache(ctx context.Context) error {
	var leaves []models.CompleteLeaf
	baseline := map[string][32]byte{}

	start, end := prefixRange(serverCachePrefix)
	err := p.store.RangeBetween(ctx, start, end, func(key string, data []byte) error {
		path, err := pathFromCacheKey(key)
		if err != nil {
			return err
		}
		value, err := unmarshalTreeValue(data)
		if err != nil {
			return err
		}
		leaves = append(leaves, models.CompleteLeaf{Path: path, Value: value})
		baseline[path.String()] = valueFingerprint(data)
		return nil
	})
	if err != nil {
		p.logger.Err(err).
			Str("func", "CachePersistence.loadServerCache").
			Msg("failed to load server cache")
		return err
	}

	p.mu.Lock()
	p.serverCache = models.FromCompleteLeaves(leaves)
	p.lastFlushed = baseline
	p.mu.Unlock()

	p.logger.Debug().
		Str("func", "CachePersistence.loadServerCache").
		Int("rows", len(leaves)).
		Msg("server cache loaded")
	return nil
}

// OverwriteServerCache applies op to the in-memory server cache and
// schedules a debounced flush. No I/O happens on this call path.
func (p *CachePersistence) OverwriteServerCache(op models.Operation) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.serverCache.ApplyOperation(op)
	p.scheduleFlushLocked()
}

// scheduleFlushLocked arms the debounce timer on the first mutation since
// the last flush. Later mutations coalesce into the already-pending timer.
func (p *CachePersistence) scheduleFlushLocked() {
	if p.flushPending || p.closed {
		return
	}
	p.flushPending = true
	p.flushTimer = time.AfterFunc(p.flushInterval, p.flushTimerFired)
}

// flushTimerFired runs when the debounce delay elapses. The pending marker
// doubles as the cancellation token: Close clears it before the timer body
// gets a chance to run.
func (p *CachePersistence) flushTimerFired() {
	p.mu.Lock()
	if !p.flushPending {
		p.mu.Unlock()
		return
	}
	p.flushPending = false
	p.flushTimer = nil
	p.mu.Unlock()

	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	if err := p.flush(context.Background()); err != nil {
		p.logger.Err(err).
			Str("func", "CachePersistence.flushTimerFired").
			Msg("scheduled flush failed, retrying after the debounce delay")
		p.mu.Lock()
		p.scheduleFlushLocked()
		p.mu.Unlock()
	}
}

// flush diffs the current server cache against the last-flushed baseline
// and writes every changed complete node as one row, replacing any rows in
// its subtree range, inside a single storage transaction. The diff is
// computed at execution time, so flush always observes the latest cache
// state. Callers must hold flushMu.
func (p *CachePersistence) flush(ctx context.Context) error {
	var changed []pendingRow
	newBaseline := map[string][32]byte{}
	var encodeErr error

	p.mu.Lock()
	p.serverCache.ForEachCompleteNode(func(path models.Path, value any) {
		if encodeErr != nil {
			return
		}
		data, err := marshalTreeValue(value)
		if err != nil {
			encodeErr = err
			return
		}
		fingerprint := valueFingerprint(data)
		newBaseline[path.String()] = fingerprint
		if previous, flushed := p.lastFlushed[path.String()]; !flushed || previous != fingerprint {
			changed = append(changed, pendingRow{path: path, data: data})
		}
	})
	var removed []models.Path
	for flushed := range p.lastFlushed {
		if _, still := newBaseline[flushed]; !still {
			removed = append(removed, models.NewPath(flushed))
		}
	}
	p.mu.Unlock()

	if encodeErr != nil {
		return encodeErr
	}
	if len(changed) == 0 && len(removed) == 0 {
		return nil
	}

	if err := p.store.BeginTransaction(); err != nil {
		return err
	}
	if err := p.bufferFlushRows(ctx, removed, changed); err != nil {
		p.store.AbortTransaction()
		return err
	}
	if err := p.store.EndTransaction(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.lastFlushed = newBaseline
	p.mu.Unlock()

	p.logger.Debug().
		Str("func", "CachePersistence.flush").
		Int("rows", len(changed)).
		Int("removed", len(removed)).
		Msg("server cache flushed")
	return nil
}

// pendingRow is one changed complete node queued for the next flush batch.
type pendingRow struct {
	path models.Path
	data []byte
}

// bufferFlushRows records the flush mutations in the open transaction:
// explicit deletes for rows whose node vanished from the cache, then a
// subtree-range replacement for every changed node.
func (p *CachePersistence) bufferFlushRows(ctx context.Context, removed []models.Path, changed []pendingRow) error {
	for _, path := range removed {
		if err := p.store.Delete(serverCacheKey(path)); err != nil {
			return err
		}
	}
	for _, row := range changed {
		start, end := subtreeRange(row.path)
		stale, err := p.store.KeysBetween(ctx, start, end)
		if err != nil {
			return err
		}
		if err := p.store.DeleteAll(stale); err != nil {
			return err
		}
		if err := p.store.Put(serverCacheKey(row.path), row.data); err != nil {
			return err
		}
	}
	return nil
}

// ServerCache returns a consistent snapshot of the cached subtree rooted at
// path. The returned tree is detached from the engine's state.
func (p *CachePersistence) ServerCache(path models.Path) *models.TreeNode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.serverCache.Subtree(path)
}

// EstimatedServerCacheSize approximates the cache footprint as the sum of
// joined path lengths and serialized value lengths over every complete
// node. Used by the tracked-query subsystem for eviction pressure, not as
// an exact storage figure.
func (p *CachePersistence) EstimatedServerCacheSize() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total int64
	p.serverCache.ForEachCompleteNode(func(path models.Path, value any) {
		data, err := marshalTreeValue(value)
		if err != nil {
			return
		}
		total += int64(len(path.String()) + len(data))
	})
	return total
}

// LoadUserOperations returns every pending user write, sorted ascending by
// id.
func (p *CachePersistence) LoadUserOperations(ctx context.Context) ([]models.PendingWrite, error) {
	var writes []models.PendingWrite

	start, end := prefixRange(userWritePrefix)
	err := p.store.RangeBetween(ctx, start, end, func(key string, data []byte) error {
		id, err := idFromKey(key, userWritePrefix)
		if err != nil {
			return err
		}
		op, err := unmarshalOperation(data)
		if err != nil {
			return err
		}
		writes = append(writes, models.PendingWrite{ID: id, Operation: op})
		return nil
	})
	if err != nil {
		p.logger.Err(err).
			Str("func", "CachePersistence.LoadUserOperations").
			Msg("failed to load pending writes")
		return nil, err
	}

	sort.Slice(writes, func(i, j int) bool { return writes[i].ID < writes[j].ID })
	return writes, nil
}

// SaveUserOperation records a pending user write under id. The caller must
// bracket the call with BeginTransaction/EndTransaction.
func (p *CachePersistence) SaveUserOperation(op models.Operation, id int64) error {
	data, err := marshalOperation(op)
	if err != nil {
		return err
	}
	return p.store.Put(userWriteKey(id), data)
}

// RemoveUserOperation deletes the pending write row for id. The caller must
// bracket the call with BeginTransaction/EndTransaction.
func (p *CachePersistence) RemoveUserOperation(id int64) error {
	return p.store.Delete(userWriteKey(id))
}

// LoadTrackedQueries returns every tracked-query record, sorted ascending
// by id.
func (p *CachePersistence) LoadTrackedQueries(ctx context.Context) ([]models.TrackedQuery, error) {
	var queries []models.TrackedQuery

	start, end := prefixRange(trackedQueryPrefix)
	err := p.store.RangeBetween(ctx, start, end, func(key string, data []byte) error {
		query, err := unmarshalTrackedQuery(data)
		if err != nil {
			return err
		}
		queries = append(queries, query)
		return nil
	})
	if err != nil {
		p.logger.Err(err).
			Str("func", "CachePersistence.LoadTrackedQueries").
			Msg("failed to load tracked queries")
		return nil, err
	}

	sort.Slice(queries, func(i, j int) bool { return queries[i].ID < queries[j].ID })
	return queries, nil
}

// SaveTrackedQuery writes the tracked-query row. The caller must bracket
// the call with BeginTransaction/EndTransaction.
func (p *CachePersistence) SaveTrackedQuery(query models.TrackedQuery) error {
	data, err := marshalTrackedQuery(query)
	if err != nil {
		return err
	}
	return p.store.Put(trackedQueryKey(query.ID), data)
}

// DeleteTrackedQuery removes the tracked-query row for id. The caller must
// bracket the call with BeginTransaction/EndTransaction.
func (p *CachePersistence) DeleteTrackedQuery(id int64) error {
	return p.store.Delete(trackedQueryKey(id))
}

// ResetPreviouslyActiveTrackedQueries marks every active tracked query
// inactive and stamps it with now, inside one transaction. Called once at
// startup so a crashed session's "actively syncing" flags are not carried
// forward. Must not be called with a transaction already open.
func (p *CachePersistence) ResetPreviouslyActiveTrackedQueries(ctx context.Context, now time.Time) error {
	queries, err := p.LoadTrackedQueries(ctx)
	if err != nil {
		return err
	}

	if err := p.store.BeginTransaction(); err != nil {
		return err
	}
	reset := 0
	for _, query := range queries {
		if !query.Active {
			continue
		}
		query.SetActiveState(false)
		query.UpdateLastUse(now)
		if err := p.SaveTrackedQuery(query); err != nil {
			p.store.AbortTransaction()
			return err
		}
		reset++
	}
	if err := p.store.EndTransaction(ctx); err != nil {
		return err
	}

	if reset > 0 {
		p.logger.Info().
			Str("func", "CachePersistence.ResetPreviouslyActiveTrackedQueries").
			Int("reset", reset).
			Msg("deactivated tracked queries from previous session")
	}
	return nil
}

// BeginTransaction opens a transaction on the underlying wrapper.
func (p *CachePersistence) BeginTransaction() error {
	return p.store.BeginTransaction()
}

// EndTransaction commits the open transaction.
func (p *CachePersistence) EndTransaction(ctx context.Context) error {
	return p.store.EndTransaction(ctx)
}

// AbortTransaction discards the open transaction without committing.
func (p *CachePersistence) AbortTransaction() error {
	return p.store.AbortTransaction()
}

// SetTransactionSuccessful is a no-op marker retained for interface
// symmetry with transaction APIs that require an explicit success vote.
func (p *CachePersistence) SetTransactionSuccessful() {}

// PruneCache evicts unkept descendants below root according to the
// externally supplied forest. The in-memory cache and the on-disk rows are
// updated together; durability of the disk side is guarded by the caller's
// transaction, which must already be open.
//
// A crash between the in-memory mutation and the transaction commit can
// desync cache from disk; callers treat the whole call as atomic and
// discard the engine on failure.
func (p *CachePersistence) PruneCache(ctx context.Context, root models.Path, forest *models.PruneForest) error {
	if !p.store.InTransaction() {
		return p.violation(ErrPruneOutsideTransaction)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	type completeNode struct {
		path  models.Path
		value any
	}
	var nodes []completeNode
	p.serverCache.ForEachCompleteNode(func(path models.Path, value any) {
		nodes = append(nodes, completeNode{path: path, value: value})
	})

	for _, node := range nodes {
		if node.path.IsStrictAncestorOf(root) {
			return p.violation(fmt.Errorf("%w: complete node at %q, root %q",
				ErrCacheOutsidePruneRoot, node.path.String(), root.String()))
		}
		if !root.IsAncestorOf(node.path) {
			continue
		}

		rel, _ := node.path.RelativeTo(root)
		switch {
		case forest.ShouldPruneUnkeptDescendants(rel):
			if err := p.pruneNodeLocked(ctx, node.path, node.value, forest.Child(rel)); err != nil {
				return err
			}
		case forest.ShouldKeep(rel):
			// whole subtree kept, nothing to do
		default:
			return p.violation(fmt.Errorf("%w: node %q relative %q",
				ErrPruneForestConflict, node.path.String(), rel.String()))
		}
	}
	return nil
}

// pruneNodeLocked replaces the complete node at path with a sparse tree of
// exactly the kept sub-values and rewrites the node's on-disk subtree
// range accordingly. Caller holds p.mu and an open transaction.
func (p *CachePersistence) pruneNodeLocked(ctx context.Context, path models.Path, value any, forest *models.PruneForest) error {
	type keptValue struct {
		rel   models.Path
		value any
	}
	var kept []keptValue
	forest.ForEachKeptNode(func(rel models.Path) {
		if v := models.ValueAtPath(value, rel); v != nil {
			kept = append(kept, keptValue{rel: rel, value: v})
		}
	})

	p.serverCache.RemoveWrite(path)
	for _, k := range kept {
		p.serverCache.ApplyOperation(models.NewOverwrite(path.Join(k.rel), k.value))
	}

	start, end := subtreeRange(path)
	stale, err := p.store.KeysBetween(ctx, start, end)
	if err != nil {
		return err
	}
	if err := p.store.DeleteAll(stale); err != nil {
		return err
	}
	for flushed := range p.lastFlushed {
		if path.IsAncestorOf(models.NewPath(flushed)) {
			delete(p.lastFlushed, flushed)
		}
	}

	var rewriteErr error
	p.serverCache.ForEachCompleteNodeUnder(path, func(nodePath models.Path, nodeValue any) {
		if rewriteErr != nil {
			return
		}
		data, err := marshalTreeValue(nodeValue)
		if err != nil {
			rewriteErr = err
			return
		}
		if err := p.store.Put(serverCacheKey(nodePath), data); err != nil {
			rewriteErr = err
			return
		}
		p.lastFlushed[nodePath.String()] = valueFingerprint(data)
	})
	if rewriteErr != nil {
		return rewriteErr
	}

	p.logger.Debug().
		Str("func", "CachePersistence.pruneNodeLocked").
		Str("path", path.String()).
		Int("kept", len(kept)).
		Msg("pruned cached subtree")
	return nil
}

// Close cancels any pending debounce timer and performs one final
// synchronous flush, so no mutation is lost on shutdown. The underlying
// store is left open; closing it is the owner's responsibility.
func (p *CachePersistence) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.flushPending = false
	if p.flushTimer != nil {
		p.flushTimer.Stop()
		p.flushTimer = nil
	}
	p.mu.Unlock()

	p.flushMu.Lock()
	defer p.flushMu.Unlock()
	return p.flush(ctx)
}

// violation surfaces an invariant break: wrapped error in lenient mode,
// panic in strict mode.
func (p *CachePersistence) violation(err error) error {
	wrapped := fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	p.logger.Error().
		Str("func", "CachePersistence.violation").
		Msg(wrapped.Error())
	if p.strict {
		panic(wrapped)
	}
	return wrapped
}

// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/krasnovkir/go-sync-cache/internal/logger"
	"github.com/krasnovkir/go-sync-cache/models"
)

type trackedQueryManager struct {
	engine CacheEngine
	logger *logger.Logger

	mu      sync.Mutex
	queries map[int64]models.TrackedQuery
	byPath  map[string]int64
	nextID  int64
}

// NewTrackedQueryManager builds the tracked-query manager over the engine.
// At construction it deactivates every query left active by the previous
// session and loads the full query index into memory.
func NewTrackedQueryManager(ctx context.Context, engine CacheEngine, log *logger.Logger) (TrackedQueryService, error) {
	if err := engine.ResetPreviouslyActiveTrackedQueries(ctx, time.Now()); err != nil {
		return nil, fmt.Errorf("reset previously active queries: %w", err)
	}

	queries, err := engine.LoadTrackedQueries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tracked queries: %w", err)
	}

	manager := &trackedQueryManager{
		engine:  engine,
		logger:  log,
		queries: make(map[int64]models.TrackedQuery, len(queries)),
		byPath:  make(map[string]int64, len(queries)),
		nextID:  1,
	}
	for _, query := range queries {
		manager.queries[query.ID] = query
		manager.byPath[query.Path] = query.ID
		if query.ID >= manager.nextID {
			manager.nextID = query.ID + 1
		}
	}

	log.Debug().
		Str("func", "NewTrackedQueryManager").
		Int("queries", len(queries)).
		Msg("tracked query index loaded")
	return manager, nil
}

func (m *trackedQueryManager) EnsureTracked(ctx context.Context, path models.Path) (models.TrackedQuery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byPath[path.String()]; ok {
		return m.queries[id], nil
	}

	query := models.TrackedQuery{
		ID:     m.nextID,
		Path:   path.String(),
		Active: true,
	}
	query.UpdateLastUse(time.Now())

	if err := m.saveQuery(ctx, query); err != nil {
		return models.TrackedQuery{}, err
	}

	m.nextID++
	m.queries[query.ID] = query
	m.byPath[query.Path] = query.ID
	return query, nil
}

func (m *trackedQueryManager) SetQueryActive(ctx context.Context, id int64) error {
	return m.setActiveState(ctx, id, true)
}

func (m *trackedQueryManager) SetQueryInactive(ctx context.Context, id int64) error {
	return m.setActiveState(ctx, id, false)
}

func (m *trackedQueryManager) setActiveState(ctx context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	query, ok := m.queries[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrQueryNotFound, id)
	}

	query.SetActiveState(active)
	query.UpdateLastUse(time.Now())

	if err := m.saveQuery(ctx, query); err != nil {
		return err
	}
	m.queries[id] = query
	return nil
}

func (m *trackedQueryManager) TrackedQuery(id int64) (models.TrackedQuery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	query, ok := m.queries[id]
	return query, ok
}

// PruneOldQueries picks the least-recently-used inactive queries, deletes
// their records and prunes their cached subtrees, keeping every subtree
// that is still tracked. The cache mutation, the row deletions and the
// query-record deletions share one storage transaction.
func (m *trackedQueryManager) PruneOldQueries(ctx context.Context, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prunable []models.TrackedQuery
	for _, query := range m.queries {
		if !query.Active {
			prunable = append(prunable, query)
		}
	}
	sort.Slice(prunable, func(i, j int) bool {
		if prunable[i].LastUse != prunable[j].LastUse {
			return prunable[i].LastUse < prunable[j].LastUse
		}
		return prunable[i].ID < prunable[j].ID
	})
	if limit < len(prunable) {
		prunable = prunable[:limit]
	}
	if len(prunable) == 0 {
		return 0, nil
	}

	pruned := make(map[int64]struct{}, len(prunable))
	for _, query := range prunable {
		pruned[query.ID] = struct{}{}
	}

	forest := models.NewPruneForest().PruneAll(models.Path{})
	for _, query := range m.queries {
		if _, gone := pruned[query.ID]; !gone {
			forest.Keep(models.NewPath(query.Path))
		}
	}

	if err := m.engine.BeginTransaction(); err != nil {
		return 0, err
	}
	for _, query := range prunable {
		if err := m.engine.DeleteTrackedQuery(query.ID); err != nil {
			m.engine.AbortTransaction()
			return 0, err
		}
	}
	if err := m.engine.PruneCache(ctx, models.Path{}, forest); err != nil {
		m.engine.AbortTransaction()
		return 0, err
	}
	m.engine.SetTransactionSuccessful()
	if err := m.engine.EndTransaction(ctx); err != nil {
		return 0, err
	}

	for _, query := range prunable {
		delete(m.queries, query.ID)
		delete(m.byPath, query.Path)
	}

	m.logger.Info().
		Str("func", "trackedQueryManager.PruneOldQueries").
		Int("pruned", len(prunable)).
		Int64("estimated_cache_size", m.engine.EstimatedServerCacheSize()).
		Msg("pruned stale tracked queries")
	return len(prunable), nil
}

// saveQuery persists a single query record in its own transaction. Caller
// holds m.mu.
func (m *trackedQueryManager) saveQuery(ctx context.Context, query models.TrackedQuery) error {
	if err := m.engine.BeginTransaction(); err != nil {
		return err
	}
	if err := m.engine.SaveTrackedQuery(query); err != nil {
		m.engine.AbortTransaction()
		return err
	}
	m.engine.SetTransactionSuccessful()
	return m.engine.EndTransaction(ctx)
}

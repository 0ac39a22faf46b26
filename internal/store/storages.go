package store

import (
	"context"
	"fmt"

	"github.com/krasnovkir/go-sync-cache/internal/config"
	"github.com/krasnovkir/go-sync-cache/internal/logger"
)

// CacheStorages bundles the open storage stack: the raw backend, the
// transactional wrapper over it and the persistence engine on top. It is
// the value handed to the service layer.
type CacheStorages struct {
	// Store is the raw ordered key-value backend.
	Store BatchStore
	// Transactional is the transaction wrapper every engine write goes
	// through.
	Transactional *TransactionalStore
	// Engine is the persistence engine with the server cache loaded.
	Engine *CachePersistence
}

// NewCacheStorages opens the configured backend, wraps it and constructs
// the persistence engine, loading the persisted server cache.
//
// Returns an error for an unknown driver, a backend that cannot be opened,
// or a cache that cannot be read back.
func NewCacheStorages(ctx context.Context, cfg config.Storage, cacheCfg config.Cache, log *logger.Logger) (*CacheStorages, error) {
	log.Info().Msg("creating new storages...")

	var backend BatchStore
	var err error
	switch cfg.DB.Driver {
	case config.DriverPebble:
		backend, err = NewConnectPebble(ctx, cfg.DB, log)
	case config.DriverSQLite:
		backend, err = NewConnectSQLite(ctx, cfg.DB, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("storage connection error: %w", err)
	}

	transactional := NewTransactionalStore(backend, cacheCfg.StrictInvariants, log)

	engine, err := NewCachePersistence(ctx, transactional, cacheCfg, log)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("engine construction error: %w", err)
	}

	return &CacheStorages{
		Store:         backend,
		Transactional: transactional,
		Engine:        engine,
	}, nil
}

// Close flushes the engine and closes the backend.
func (s *CacheStorages) Close(ctx context.Context) error {
	if err := s.Engine.Close(ctx); err != nil {
		s.Store.Close()
		return err
	}
	return s.Store.Close()
}

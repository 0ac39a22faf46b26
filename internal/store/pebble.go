package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/krasnovkir/go-sync-cache/internal/config"
	"github.com/krasnovkir/go-sync-cache/internal/logger"
)

// pebbleStore is the default [BatchStore] backend, an embedded pebble LSM
// database. Pebble gives us byte-ordered iteration, atomic batches and
// durable commits out of the box.
type pebbleStore struct {
	db     *pebble.DB
	logger *logger.Logger
}

// NewConnectPebble opens (or creates) the pebble database at cfg.Path.
// The special path ":memory:" opens an in-memory database backed by
// pebble's memory filesystem, used by tests.
func NewConnectPebble(ctx context.Context, cfg config.DB, log *logger.Logger) (BatchStore, error) {
	opts := &pebble.Options{}
	path := cfg.Path
	if path == ":memory:" || path == "memory" {
		opts.FS = vfs.NewMem()
		path = ""
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPebble").Str("path", cfg.Path).Msg("error opening pebble database")
		return nil, fmt.Errorf("error opening pebble database: %w", err)
	}
	log.Debug().Str("func", "NewConnectPebble").Str("path", cfg.Path).Msg("opened pebble database")

	return &pebbleStore{db: db, logger: log}, nil
}

// ApplyBatch commits all puts and deletes as one synced pebble batch.
func (p *pebbleStore) ApplyBatch(ctx context.Context, puts []Row, deletes []string) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	for _, key := range deletes {
		if err := batch.Delete([]byte(key), nil); err != nil {
			return fmt.Errorf("error buffering delete: %w", err)
		}
	}
	for _, row := range puts {
		if err := batch.Set([]byte(row.Key), row.Value, nil); err != nil {
			return fmt.Errorf("error buffering put: %w", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		p.logger.Err(err).
			Str("func", "pebbleStore.ApplyBatch").
			Int("puts", len(puts)).
			Int("deletes", len(deletes)).
			Msg("error committing pebble batch")
		return fmt.Errorf("error committing pebble batch: %w", err)
	}
	return nil
}

// ScanRange iterates committed rows in [start, end) in ascending byte order.
func (p *pebbleStore) ScanRange(ctx context.Context, start, end string, fn func(key string, value []byte) error) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(start),
		UpperBound: []byte(end),
	})
	if err != nil {
		return fmt.Errorf("error creating pebble iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(string(iter.Key()), iter.Value()); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("pebble iterator error: %w", err)
	}
	return nil
}

// ContainsKey reports whether the committed store holds the key.
func (p *pebbleStore) ContainsKey(ctx context.Context, key string) (bool, error) {
	_, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading pebble key: %w", err)
	}
	closer.Close()
	return true, nil
}

// Close closes the pebble database.
func (p *pebbleStore) Close() error {
	return p.db.Close()
}

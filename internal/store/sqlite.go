package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/krasnovkir/go-sync-cache/internal/config"
	"github.com/krasnovkir/go-sync-cache/internal/logger"
	"github.com/krasnovkir/go-sync-cache/migrations"
)

// sqliteStore is the alternate [BatchStore] backend, a single kv table in
// an SQLite file. SQLite's default BINARY collation on TEXT keys gives the
// byte-wise iteration order the key encoding relies on, and wrapping a
// batch in one database transaction gives atomic durable commits.
type sqliteStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewConnectSQLite opens the SQLite database at cfg.Path, creating the file
// if needed, and brings the schema up to date via embedded goose
// migrations. The DSN ":memory:" opens an in-memory database.
func NewConnectSQLite(ctx context.Context, cfg config.DB, log *logger.Logger) (BatchStore, error) {
	if cfg.Path != ":memory:" && cfg.Path != "memory" {
		if err := createLocalDBFileIfNotExists(cfg.Path); err != nil {
			log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
			return nil, fmt.Errorf("error creating database file")
		}
	}

	conn, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB")
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}

	if err = migrations.Migrate(conn); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("migration failed")
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Debug().Str("func", "NewConnectSQLite").Str("path", cfg.Path).Msg("connected to database successfully")

	return &sqliteStore{db: conn, logger: log}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		// if not found - create
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	// file already exists
	return nil
}

// ApplyBatch applies all puts and deletes inside a single database
// transaction using prepared statements.
func (s *sqliteStore) ApplyBatch(ctx context.Context, puts []Row, deletes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Err(err).
			Str("func", "sqliteStore.ApplyBatch").
			Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(deletes) > 0 {
		stmt, err := tx.PrepareContext(ctx, deleteCacheRow)
		if err != nil {
			return fmt.Errorf("failed to prepare delete statement: %w", err)
		}
		defer stmt.Close()
		for _, key := range deletes {
			if _, err := stmt.ExecContext(ctx, key); err != nil {
				s.logger.Err(err).
					Str("func", "sqliteStore.ApplyBatch").
					Str("key", key).
					Msg("failed to execute delete statement")
				return fmt.Errorf("failed to execute delete statement: %w", err)
			}
		}
	}

	if len(puts) > 0 {
		stmt, err := tx.PrepareContext(ctx, upsertCacheRow)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert statement: %w", err)
		}
		defer stmt.Close()
		for _, row := range puts {
			if _, err := stmt.ExecContext(ctx, row.Key, row.Value); err != nil {
				s.logger.Err(err).
					Str("func", "sqliteStore.ApplyBatch").
					Str("key", row.Key).
					Msg("failed to execute upsert statement")
				return fmt.Errorf("failed to execute upsert statement: %w", err)
			}
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		s.logger.Err(commitErr).
			Str("func", "sqliteStore.ApplyBatch").
			Int("puts", len(puts)).
			Int("deletes", len(deletes)).
			Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", commitErr)
	}
	return nil
}

// ScanRange streams rows in [start, end) ordered by key.
func (s *sqliteStore) ScanRange(ctx context.Context, start, end string, fn func(key string, value []byte) error) error {
	rows, err := s.db.QueryContext(ctx, scanCacheRange, start, end)
	if err != nil {
		s.logger.Err(err).
			Str("func", "sqliteStore.ScanRange").
			Msg("failed to execute range query")
		return fmt.Errorf("failed to execute range query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if scanErr := rows.Scan(&key, &value); scanErr != nil {
			s.logger.Err(scanErr).
				Str("func", "sqliteStore.ScanRange").
				Msg("failed to scan cache row")
			return fmt.Errorf("failed to scan cache row: %w", scanErr)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logger.Err(rowsErr).
			Str("func", "sqliteStore.ScanRange").
			Msg("error occurred during rows iteration")
		return fmt.Errorf("error occurred during rows iteration: %w", rowsErr)
	}
	return nil
}

// ContainsKey reports whether the key exists in the kv table.
func (s *sqliteStore) ContainsKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, containsCacheKey, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to execute exists query: %w", err)
	}
	return exists, nil
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

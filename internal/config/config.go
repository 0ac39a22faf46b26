// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"
)

// Storage driver names accepted in [DB.Driver].
const (
	// DriverPebble selects the embedded pebble backend (default).
	DriverPebble = "pebble"
	// DriverSQLite selects the SQLite kv-table backend.
	DriverSQLite = "sqlite"
)

// DefaultFlushInterval is the debounce delay between the first cache
// mutation and the flush that persists it.
const DefaultFlushInterval = 500 * time.Millisecond

// StructuredConfig is the top-level configuration container. It is
// populated by merging values from environment variables, command-line
// flags, an optional JSON file and built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Storage holds configuration for the persistence backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Cache holds engine tuning knobs: flush debounce and invariant
	// strictness.
	Cache Cache `envPrefix:"CACHE_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged after environment
	// variables and flags. Populated via the CONFIG environment variable
	// or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration of the storage backend.
type Storage struct {
	// DB holds the embedded database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds the embedded database settings.
type DB struct {
	// Driver selects the backend: "pebble" or "sqlite".
	// Env: STORAGE_DB_DRIVER
	Driver string `env:"DRIVER"`

	// Path is the database location on disk. The special value
	// ":memory:" opens an in-memory store, which only tests should use.
	// Env: STORAGE_DB_PATH
	Path string `env:"PATH"`
}

// Cache holds persistence-engine settings.
type Cache struct {
	// FlushInterval is the debounce delay before mutations are flushed to
	// storage (e.g. "500ms", "2s").
	// Env: CACHE_FLUSH_INTERVAL
	FlushInterval time.Duration `env:"FLUSH_INTERVAL"`

	// StrictInvariants makes invariant violations panic instead of being
	// returned as errors. Meant for tests and debug builds.
	// Env: CACHE_STRICT_INVARIANTS
	StrictInvariants bool `env:"STRICT_INVARIANTS"`
}

// GetConfig assembles the merged configuration from environment variables,
// flags, the optional JSON file and defaults, then validates it.
func GetConfig() (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
	if err != nil {
		return nil, fmt.Errorf("error building config: %w", err)
	}
	return cfg, nil
}

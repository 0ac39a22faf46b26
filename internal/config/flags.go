package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d storage driver ("pebble" or "sqlite")
//	-f database file path
//	-flush-interval debounce delay before flushing (e.g., "500ms", "2s")
//	-strict make invariant violations panic
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var driver string
	var dbPath string
	var flushInterval time.Duration
	var strict bool
	var jsonConfigPath string

	flag.StringVar(&driver, "d", "", "Storage driver (pebble or sqlite)")
	flag.StringVar(&dbPath, "f", "", "Database file path")
	flag.DurationVar(&flushInterval, "flush-interval", 0, "Flush debounce delay (e.g., 500ms, 2s)")
	flag.BoolVar(&strict, "strict", false, "Panic on invariant violations")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Storage: Storage{
			DB: DB{
				Driver: driver,
				Path:   dbPath,
			},
		},
		Cache: Cache{
			FlushInterval:    flushInterval,
			StrictInvariants: strict,
		},
		JSONFilePath: jsonConfigPath,
	}
}

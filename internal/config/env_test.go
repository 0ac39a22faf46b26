// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var knownEnvVars = []string{
	"CONFIG",
	"STORAGE_DB_DRIVER",
	"STORAGE_DB_PATH",
	"CACHE_FLUSH_INTERVAL",
	"CACHE_STRICT_INVARIANTS",
}

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	clearEnvVars(t)
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range knownEnvVars {
		// t.Setenv registers restoration of the original value
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	setEnvVars(t, map[string]string{
		"CONFIG": "/path/to/config.json",

		// Storage has nested prefixes: STORAGE_ + DB_
		"STORAGE_DB_DRIVER": "sqlite",
		"STORAGE_DB_PATH":   "/var/cache/sync.db",

		"CACHE_FLUSH_INTERVAL":    "2s",
		"CACHE_STRICT_INVARIANTS": "true",
	})

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, DriverSQLite, cfg.Storage.DB.Driver)
	assert.Equal(t, "/var/cache/sync.db", cfg.Storage.DB.Path)
	assert.Equal(t, 2*time.Second, cfg.Cache.FlushInterval)
	assert.True(t, cfg.Cache.StrictInvariants)
}

func TestParseEnv_PartialFields(t *testing.T) {
	// Arrange
	setEnvVars(t, map[string]string{
		"STORAGE_DB_PATH": "/var/cache/sync.db",
	})

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/sync.db", cfg.Storage.DB.Path)
	assert.Empty(t, cfg.Storage.DB.Driver)
	assert.Zero(t, cfg.Cache.FlushInterval)
	assert.False(t, cfg.Cache.StrictInvariants)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseEnv_EmptyEnv(t *testing.T) {
	// Arrange
	clearEnvVars(t)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, StructuredConfig{}, *cfg)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	// Arrange
	setEnvVars(t, map[string]string{
		"CACHE_FLUSH_INTERVAL": "not-a-duration",
	})

	// Act
	err := parseEnv(&StructuredConfig{})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting env configs")
}

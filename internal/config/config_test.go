package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recstore/internal/cache"
	"github.com/roach88/recstore/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:1234", cfg.Listen)
	assert.Equal(t, store.BackendMemory, cfg.Backend)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, cache.DefaultCapacity, cfg.Cache.Capacity)
	assert.Equal(t, cache.DefaultNegativeTTL, cfg.Cache.NegativeTTL)
	assert.Equal(t, cache.DefaultOptions(), cfg.CacheOptions())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: 127.0.0.1:8080
backend: sqlite
sqlite_dsn: file:records?mode=memory&cache=shared
lookup_delay: 250ms
cache:
  enabled: false
  capacity: 50
  ttl: 1m
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, store.BackendSQLite, cfg.Backend)
	assert.Equal(t, "file:records?mode=memory&cache=shared", cfg.SQLiteDSN)
	assert.Equal(t, 250*time.Millisecond, cfg.LookupDelay)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, cache.DefaultNegativeTTL, cfg.Cache.NegativeTTL)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "listen: x\nport: 1\n", "field port not found"},
		{"bad backend", "backend: redis\n", "backend must be"},
		{"file dsn", "backend: sqlite\nsqlite_dsn: ./records.db\n", "sqlite_dsn must name an in-memory database"},
		{"bad duration", "lookup_delay: soon\n", "failed to parse YAML"},
		{"negative delay", "lookup_delay: -1s\n", "lookup_delay must not be negative"},
		{"zero capacity", "cache:\n  capacity: 0\n", "cache.capacity must be positive"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

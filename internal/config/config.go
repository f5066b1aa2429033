// Package config loads recstore server configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recstore/internal/cache"
	"github.com/roach88/recstore/internal/store"
)

// Config is the serve command configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// Backend selects the Record Store: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLiteDSN is passed to the SQLite backend. Empty means a private
	// in-memory database. Only in-memory DSNs are accepted; records do not
	// outlive the process.
	SQLiteDSN string `yaml:"sqlite_dsn"`

	// LookupDelay adds latency to every store read.
	LookupDelay time.Duration `yaml:"lookup_delay"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// CacheConfig configures the Lookup Cache.
type CacheConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Capacity    int           `yaml:"capacity"`
	TTL         time.Duration `yaml:"ttl"`
	NegativeTTL time.Duration `yaml:"negative_ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// DefaultListen binds every interface on port 1234.
const DefaultListen = "0.0.0.0:1234"

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:          DefaultListen,
		Backend:         store.BackendMemory,
		ShutdownTimeout: 5 * time.Second,
		Cache: CacheConfig{
			Enabled:     true,
			Capacity:    cache.DefaultCapacity,
			NegativeTTL: cache.DefaultNegativeTTL,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}

	switch c.Backend {
	case store.BackendMemory, store.BackendSQLite:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", store.BackendMemory, store.BackendSQLite, c.Backend)
	}

	if !isMemoryDSN(c.SQLiteDSN) {
		return fmt.Errorf("sqlite_dsn must name an in-memory database (\":memory:\" or mode=memory), got %q", c.SQLiteDSN)
	}

	if c.LookupDelay < 0 {
		return fmt.Errorf("lookup_delay must not be negative")
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative")
	}

	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	if c.Cache.TTL < 0 || c.Cache.NegativeTTL < 0 {
		return fmt.Errorf("cache ttl values must not be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || dsn == store.MemoryDSN || strings.Contains(dsn, "mode=memory")
}

// CacheOptions converts the cache section into cache.Options.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Capacity:    c.Cache.Capacity,
		TTL:         c.Cache.TTL,
		NegativeTTL: c.Cache.NegativeTTL,
	}
}

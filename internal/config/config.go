// Package config loads the modelmeta application configuration.
// This is the app's own settings file, not the remote models catalog.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/roelfdiedericks/modelmeta/internal/paths"
)

// Config represents the merged modelmeta configuration
type Config struct {
	Catalog CatalogConfig `json:"catalog"`
	Log     LogConfig     `json:"log"`
}

type CatalogConfig struct {
	// URL of the remote models catalog document
	URL string `json:"url"`
	// TTLMs is the freshness window for a cached catalog, in milliseconds
	TTLMs int64 `json:"ttlMs"`
	// FetchTimeoutMs bounds a single remote fetch, in milliseconds
	FetchTimeoutMs int64 `json:"fetchTimeoutMs"`
	// CachePath is the SQLite cache database path. Empty means ~/.modelmeta/cache.db
	CachePath string `json:"cachePath"`
}

type LogConfig struct {
	Level string `json:"level"` // "debug", "info", "warn", "error"
}

const (
	DefaultCatalogURL     = "https://config.modelmeta.dev/models.json"
	DefaultTTLMs          = 600_000
	DefaultFetchTimeoutMs = 5_000
)

// Load reads configuration from modelmeta.json, filling in defaults for
// anything the file doesn't set. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := &Config{
		Catalog: CatalogConfig{
			URL:            DefaultCatalogURL,
			TTLMs:          DefaultTTLMs,
			FetchTimeoutMs: DefaultFetchTimeoutMs,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	path, err := paths.ConfigPath()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Guard against nonsense overrides
	if cfg.Catalog.TTLMs <= 0 {
		cfg.Catalog.TTLMs = DefaultTTLMs
	}
	if cfg.Catalog.FetchTimeoutMs <= 0 {
		cfg.Catalog.FetchTimeoutMs = DefaultFetchTimeoutMs
	}

	return cfg, nil
}

// DefaultCachePath returns the default SQLite cache location (~/.modelmeta/cache.db).
func (c *Config) DefaultCachePath() (string, error) {
	if c.Catalog.CachePath != "" {
		return c.Catalog.CachePath, nil
	}
	return paths.DataPath("cache.db")
}

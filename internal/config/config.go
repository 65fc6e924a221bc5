// Package config loads runtime configuration from an optional YAML file
// and the environment. Environment variables win over the file; both win
// over the built-in defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StorageType controls the storage backend for the embedded store.
type StorageType string

const (
	StorageSQLite StorageType = "sqlite"
	StorageMemory StorageType = "memory"
)

// Config contains all runtime configuration for the service.
type Config struct {
	// Core
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`

	// BackendURL points the viewer at another instance's history API.
	// Empty means records are served from the embedded store.
	BackendURL string `yaml:"backend_url"`

	// Storage (embedded store only)
	Storage        StorageType `yaml:"storage"`
	StoragePath    string      `yaml:"storage_path"`
	StorageMaxRows int         `yaml:"storage_max_rows"`

	// Viewer
	DefaultLimit int `yaml:"default_limit"`

	// API limit ceilings. List endpoints clamp to MaxListLimit, the
	// pairing endpoint to MaxPairLimit.
	MaxListLimit int `yaml:"max_list_limit"`
	MaxPairLimit int `yaml:"max_pair_limit"`

	// IngestEnabled exposes the POST ingestion endpoints.
	IngestEnabled bool `yaml:"ingest_enabled"`

	// Backend health probing (only used with BackendURL)
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	HealthCheckTimeout  time.Duration `yaml:"health_check_timeout"`

	// HTTP
	CORSAllowOrigin string `yaml:"cors_allow_origin"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:          ":8600",
		LogLevel:            "info",
		BackendURL:          "",
		Storage:             StorageSQLite,
		StoragePath:         "/data/analysis-history.sqlite",
		StorageMaxRows:      3000,
		DefaultLimit:        20,
		MaxListLimit:        500,
		MaxPairLimit:        300,
		IngestEnabled:       true,
		HealthCheckInterval: 30 * time.Second,
		HealthCheckTimeout:  5 * time.Second,
		CORSAllowOrigin:     "*",
	}
}

// Load builds a validated Config from defaults, the optional CONFIG_FILE
// YAML overlay, and environment variables, in increasing precedence.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := getEnvString("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(strings.NewReader(string(b)))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getEnvString("LISTEN_ADDR", c.ListenAddr)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
	c.BackendURL = getEnvString("BACKEND_URL", c.BackendURL)
	c.Storage = StorageType(getEnvString("STORAGE", string(c.Storage)))
	c.StoragePath = getEnvString("STORAGE_PATH", c.StoragePath)
	c.StorageMaxRows = getEnvInt("STORAGE_MAX_ROWS", c.StorageMaxRows)
	c.DefaultLimit = getEnvInt("DEFAULT_LIMIT", c.DefaultLimit)
	c.MaxListLimit = getEnvInt("MAX_LIST_LIMIT", c.MaxListLimit)
	c.MaxPairLimit = getEnvInt("MAX_PAIR_LIMIT", c.MaxPairLimit)
	c.IngestEnabled = getEnvBool("INGEST_ENABLED", c.IngestEnabled)
	c.HealthCheckInterval = getEnvDuration("HEALTH_CHECK_INTERVAL", c.HealthCheckInterval)
	c.HealthCheckTimeout = getEnvDuration("HEALTH_CHECK_TIMEOUT", c.HealthCheckTimeout)
	c.CORSAllowOrigin = getEnvString("CORS_ALLOW_ORIGIN", c.CORSAllowOrigin)
}

// Validate checks configuration constraints.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageMemory:
		// ok
	default:
		return fmt.Errorf("invalid STORAGE: %q (must be sqlite|memory)", c.Storage)
	}

	if c.Storage == StorageSQLite && c.BackendURL == "" && c.StoragePath == "" {
		return fmt.Errorf("STORAGE_PATH must be set for sqlite storage")
	}

	if c.StorageMaxRows < 100 {
		return fmt.Errorf("STORAGE_MAX_ROWS must be >= 100")
	}

	if c.MaxListLimit < 1 {
		return fmt.Errorf("MAX_LIST_LIMIT must be >= 1")
	}
	if c.MaxPairLimit < 1 {
		return fmt.Errorf("MAX_PAIR_LIMIT must be >= 1")
	}
	if c.DefaultLimit < 1 || c.DefaultLimit > c.MaxListLimit {
		return fmt.Errorf("DEFAULT_LIMIT must be in 1..MAX_LIST_LIMIT")
	}

	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid BACKEND_URL: %q (scheme and host required)", c.BackendURL)
		}
	}

	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("HEALTH_CHECK_INTERVAL must be > 0")
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be > 0")
	}

	return nil
}

// Helper functions for parsing environment variables

func getEnvString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	os.Unsetenv("CONFIG_FILE")
	os.Unsetenv("STORAGE")
	os.Unsetenv("LISTEN_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":8600" {
		t.Errorf("ListenAddr = %v, want :8600", cfg.ListenAddr)
	}
	if cfg.Storage != StorageSQLite {
		t.Errorf("Default storage = %v, want %v", cfg.Storage, StorageSQLite)
	}
	if cfg.StorageMaxRows != 3000 {
		t.Errorf("StorageMaxRows = %v, want 3000", cfg.StorageMaxRows)
	}
	if cfg.DefaultLimit != 20 {
		t.Errorf("DefaultLimit = %v, want 20", cfg.DefaultLimit)
	}
	if cfg.MaxListLimit != 500 || cfg.MaxPairLimit != 300 {
		t.Errorf("limits = %v/%v, want 500/300", cfg.MaxListLimit, cfg.MaxPairLimit)
	}
	if !cfg.IngestEnabled {
		t.Error("IngestEnabled should default to true")
	}
}

func TestEnvOverrides(t *testing.T) {
	os.Setenv("LISTEN_ADDR", ":9000")
	os.Setenv("STORAGE", "memory")
	os.Setenv("DEFAULT_LIMIT", "5")
	os.Setenv("INGEST_ENABLED", "false")
	os.Setenv("HEALTH_CHECK_INTERVAL", "10s")
	defer func() {
		os.Unsetenv("LISTEN_ADDR")
		os.Unsetenv("STORAGE")
		os.Unsetenv("DEFAULT_LIMIT")
		os.Unsetenv("INGEST_ENABLED")
		os.Unsetenv("HEALTH_CHECK_INTERVAL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %v, want :9000", cfg.ListenAddr)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Storage = %v, want %v", cfg.Storage, StorageMemory)
	}
	if cfg.DefaultLimit != 5 {
		t.Errorf("DefaultLimit = %v, want 5", cfg.DefaultLimit)
	}
	if cfg.IngestEnabled {
		t.Error("IngestEnabled should be false")
	}
	if cfg.HealthCheckInterval != 10*time.Second {
		t.Errorf("HealthCheckInterval = %v, want 10s", cfg.HealthCheckInterval)
	}
}

func TestConfigFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "listen_addr: \":7000\"\nstorage: memory\ndefault_limit: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	os.Setenv("CONFIG_FILE", path)
	os.Setenv("LISTEN_ADDR", ":7777") // env wins over file
	defer func() {
		os.Unsetenv("CONFIG_FILE")
		os.Unsetenv("LISTEN_ADDR")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ListenAddr != ":7777" {
		t.Errorf("ListenAddr = %v, want :7777 (env over file)", cfg.ListenAddr)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Storage = %v, want memory (from file)", cfg.Storage)
	}
	if cfg.DefaultLimit != 10 {
		t.Errorf("DefaultLimit = %v, want 10 (from file)", cfg.DefaultLimit)
	}
	if cfg.MaxListLimit != 500 {
		t.Errorf("MaxListLimit = %v, want untouched default 500", cfg.MaxListLimit)
	}
}

func TestConfigFileUnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("no_such_field: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	os.Setenv("CONFIG_FILE", path)
	defer os.Unsetenv("CONFIG_FILE")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown config field")
	}
}

func TestInvalidStorageRejected(t *testing.T) {
	os.Setenv("STORAGE", "redis")
	defer os.Unsetenv("STORAGE")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid STORAGE")
	}
}

func TestInvalidBackendURLRejected(t *testing.T) {
	os.Setenv("BACKEND_URL", "localhost:8600")
	defer os.Unsetenv("BACKEND_URL")

	if _, err := Load(); err == nil {
		t.Error("Expected error for BACKEND_URL without scheme")
	}
}

func TestValidateLimits(t *testing.T) {
	cfg := defaultConfig()
	cfg.DefaultLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for DEFAULT_LIMIT=0")
	}

	cfg = defaultConfig()
	cfg.DefaultLimit = cfg.MaxListLimit + 1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for DEFAULT_LIMIT above MAX_LIST_LIMIT")
	}

	cfg = defaultConfig()
	cfg.StorageMaxRows = 10
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for STORAGE_MAX_ROWS below floor")
	}
}

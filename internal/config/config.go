package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Driver is one of: sqlite, postgres, mysql, mongo, remote.
	Driver string `yaml:"driver"`
	// DSN is the connection string. For sqlite it is a file path, for
	// remote it is the service base URL.
	DSN string `yaml:"dsn"`
	// Database names the Mongo database (mongo driver only).
	Database string `yaml:"database,omitempty"`
}

// Config is the top-level lessons.yml configuration.
type Config struct {
	DataDir            string      `yaml:"data_dir"`
	ImportDir          string      `yaml:"import_dir"`
	AutosaveDebounceMs int         `yaml:"autosave_debounce_ms"`
	SnapshotCron       string      `yaml:"snapshot_cron,omitempty"`
	Store              StoreConfig `yaml:"store"`
}

// Debounce returns the autosave quiescence window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.AutosaveDebounceMs) * time.Millisecond
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".lessons")
	return &Config{
		DataDir:            dataDir,
		ImportDir:          filepath.Join(dataDir, "imports"),
		AutosaveDebounceMs: 2000,
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(dataDir, "lessons.db"),
		},
	}
}

// Load reads a YAML config file, filling every omitted field with its
// default. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres", "mysql", "mongo", "remote":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("store dsn is required")
	}
	if c.AutosaveDebounceMs <= 0 {
		return fmt.Errorf("autosave_debounce_ms must be positive")
	}
	return nil
}

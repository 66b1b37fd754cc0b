package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendDefra  = "defra"
	BackendMemory = "memory"
)

// Config holds promptshelf configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Defra   DefraConfig   `mapstructure:"defra" yaml:"defra"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// StorageConfig selects where overrides are persisted.
type StorageConfig struct {
	// Backend is one of sqlite, defra or memory.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// SQLitePath is the database file for the sqlite backend (default: {home}/promptshelf.db).
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// DefraConfig holds DefraDB container configuration.
type DefraConfig struct {
	// ContainerName is the Docker container name (default: promptshelf-defra)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use (default: sourcenetwork/defradb:latest)
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 9181)
	Port string `mapstructure:"port" yaml:"port"`
	// URL points at an already running DefraDB. When set no container is managed.
	URL string `mapstructure:"url" yaml:"url"`
}

// CatalogConfig points at a YAML catalog replacing the embedded default.
type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		Defra: DefraConfig{
			ContainerName: "promptshelf-defra",
			Image:         "sourcenetwork/defradb:latest",
			Port:          "9181",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendDefra, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be sqlite, defra or memory, got %q", c.Storage.Backend)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// SQLitePath returns the sqlite database path, expanded against homeDir when unset.
func (c *Config) SQLitePath(homeDir string) string {
	if p := ResolveEnvVars(c.Storage.SQLitePath); p != "" {
		return p
	}
	return filepath.Join(homeDir, "promptshelf.db")
}

// CatalogPath returns the catalog file path with ${ENV_VAR} references expanded.
func (c *Config) CatalogPath() string {
	return ResolveEnvVars(c.Catalog.Path)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}

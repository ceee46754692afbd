// ABOUTME: trainload configuration: JSON file overlaid by environment variables.
// ABOUTME: Resolves the database URL, source directories and field alias table.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"

	"github.com/harperreed/trainload/internal/fitfile"
	"github.com/harperreed/trainload/internal/storage"
)

// ErrMissingDatabaseURL is returned when no database URL is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set (run `trainload init` or export DATABASE_URL)")

// Config stores trainload configuration. Environment variables win over the file.
type Config struct {
	// DatabaseURL selects the store: postgres://..., sqlite://path, file:... or :memory:.
	DatabaseURL string `json:"database_url,omitempty" env:"DATABASE_URL"`

	// ActivityDir holds *.fit recordings. Supports ~ expansion.
	ActivityDir string `json:"activity_dir,omitempty" env:"TRAINLOAD_ACTIVITY_DIR"`

	// SleepDir holds sleep_*.json summaries. Supports ~ expansion.
	SleepDir string `json:"sleep_dir,omitempty" env:"TRAINLOAD_SLEEP_DIR"`

	// FieldAliases is an optional YAML file overriding the rpe/feel field mapping.
	FieldAliases string `json:"field_aliases,omitempty" env:"TRAINLOAD_FIELD_ALIASES"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"TRAINLOAD_LOG_LEVEL"`

	// UserID is the profile id written by `trainload user set`.
	UserID string `json:"user_id,omitempty" env:"TRAINLOAD_USER_ID"`
}

// Validate reports configuration that cannot be used.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	if _, _, err := storage.ParseDSN(c.DatabaseURL); err != nil {
		return fmt.Errorf("invalid database url: %w", err)
	}
	return nil
}

// GetActivityDir returns the activity directory with ~ expanded.
func (c *Config) GetActivityDir() string {
	if c.ActivityDir == "" {
		return filepath.Join(storage.DataDir(), "activities")
	}
	return ExpandPath(c.ActivityDir)
}

// GetSleepDir returns the sleep directory with ~ expanded.
func (c *Config) GetSleepDir() string {
	if c.SleepDir == "" {
		return filepath.Join(storage.DataDir(), "sleep")
	}
	return ExpandPath(c.SleepDir)
}

// GetUserID returns the configured user id, defaulting to "me".
func (c *Config) GetUserID() string {
	if c.UserID == "" {
		return "me"
	}
	return c.UserID
}

// AliasTable returns the configured field alias table or the default one.
func (c *Config) AliasTable() (*fitfile.AliasTable, error) {
	if c.FieldAliases == "" {
		return fitfile.DefaultAliases(), nil
	}
	return fitfile.LoadAliases(ExpandPath(c.FieldAliases))
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage validates the config and opens the repository.
func (c *Config) OpenStorage(ctx context.Context) (*storage.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return storage.Open(ctx, c.DatabaseURL)
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "trainload", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads config from path and applies environment overrides.
// A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

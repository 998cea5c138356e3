// ABOUTME: User configuration for stickies, stored as YAML under XDG config paths.
// ABOUTME: Handles defaults, ${ENV} expansion, STICKIES_* overrides and validation.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/harper/stickies/internal/db"
	"github.com/harper/stickies/internal/models"
	"gopkg.in/yaml.v3"
)

// Log levels accepted in log_level.
var logLevels = []any{"debug", "info", "warn", "error"}

// Config holds user settings.
type Config struct {
	// DBPath is the note database file (default: $XDG_DATA_HOME/stickies/notes.db)
	DBPath string `yaml:"db_path"`

	DefaultColor string `yaml:"default_color"`

	// TrashRetentionDays is how long trashed notes are kept; 0 keeps them forever.
	TrashRetentionDays int `yaml:"trash_retention_days"`

	AutosaveDelayMS int `yaml:"autosave_delay_ms"`
	SearchDelayMS   int `yaml:"search_delay_ms"`

	Preview PreviewConfig `yaml:"preview"`

	LogLevel string `yaml:"log_level"`
}

// PreviewConfig bounds the note previews shown in listings.
type PreviewConfig struct {
	MaxLines int `yaml:"max_lines"`
	MaxChars int `yaml:"max_chars"`
}

func DefaultConfig() *Config {
	return &Config{
		DBPath:             db.DefaultPath(),
		DefaultColor:       string(models.DefaultColor),
		TrashRetentionDays: 7,
		AutosaveDelayMS:    500,
		SearchDelayMS:      250,
		Preview: PreviewConfig{
			MaxLines: 5,
			MaxChars: 80,
		},
		LogLevel: "warn",
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.DefaultColor, validation.Required, validation.By(validColor)),
		validation.Field(&c.TrashRetentionDays, validation.Min(0)),
		validation.Field(&c.AutosaveDelayMS, validation.Required, validation.Min(1)),
		validation.Field(&c.SearchDelayMS, validation.Required, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.Required, validation.In(logLevels...)),
	); err != nil {
		return err
	}
	return c.Preview.Validate()
}

func (c *PreviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxLines, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxChars, validation.Required, validation.Min(1)),
	)
}

func validColor(value any) error {
	s, _ := value.(string)
	if _, err := models.ParseColor(s); err != nil {
		return errors.New("must be one of " + models.ColorNames())
	}
	return nil
}

func (c *Config) Color() models.Color {
	color, err := models.ParseColor(c.DefaultColor)
	if err != nil {
		return models.DefaultColor
	}
	return color
}

func (c *Config) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMS) * time.Millisecond
}

func (c *Config) SearchDelay() time.Duration {
	return time.Duration(c.SearchDelayMS) * time.Millisecond
}

// ConfigDir returns the configuration directory path.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "stickies")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadConfig reads the config at path, or at ConfigPath when path is empty.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.DBPath = expandPath(cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, or to ConfigPath when path is empty.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ConfigExists returns true if a config file exists.
func ConfigExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STICKIES_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("STICKIES_COLOR"); v != "" {
		cfg.DefaultColor = v
	}
	if v := os.Getenv("STICKIES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STICKIES_TRASH_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.TrashRetentionDays = days
		}
	}
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

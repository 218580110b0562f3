// Package config loads the winloop demo configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config drives the demo binary: initial window geometry and title, the
// loop's scheduling mode and the cursor shape installed at startup.
type Config struct {
	Title    string `yaml:"title"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Mode     string `yaml:"mode"`   // "wait" or "poll"
	Cursor   string `yaml:"cursor"` // "pointer" or "hand2"
	IconPath string `yaml:"icon_path"`
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn" or "error"
}

// DefaultConfig returns the built-in defaults used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Title:    "winloop",
		Width:    1200,
		Height:   720,
		Mode:     "wait",
		Cursor:   "pointer",
		LogLevel: "info",
	}
}

// DefaultConfigPath returns ~/.config/winloop/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winloop", "config.yaml"), nil
}

// Load reads the configuration from the standard location; a missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the configuration at path. A missing file
// yields the defaults; a present file overrides them field by field.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enum fields.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	switch c.Mode {
	case "wait", "poll":
	default:
		return fmt.Errorf("mode must be \"wait\" or \"poll\", got %q", c.Mode)
	}
	switch c.Cursor {
	case "pointer", "hand2":
	default:
		return fmt.Errorf("cursor must be \"pointer\" or \"hand2\", got %q", c.Cursor)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

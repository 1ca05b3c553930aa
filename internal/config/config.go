// Package config loads the formbuilder configuration from layered YAML files
// and builds the process logger.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete formbuilder configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Report ReportConfig `yaml:"report"`
}

// StoreConfig selects the project persistence backend.
type StoreConfig struct {
	// Driver is sqlite, file or memory
	Driver string `yaml:"driver"`
	// Path is the sqlite database file or the file store directory
	Path string `yaml:"path"`
	// Debounce delays writes after a change
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReportConfig configures job test reports.
type ReportConfig struct {
	// Style is auto, dark, light or notty
	Style string `yaml:"style"`
	Width int    `yaml:"width"`
	// Templates overrides the embedded report templates
	Templates string `yaml:"templates"`
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:   "sqlite",
			Path:     defaultStorePath(),
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Report: ReportConfig{
			Style: "auto",
			Width: 100,
		},
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "formbuilder.sqlite"
	}
	return filepath.Join(dir, "formbuilder", "formbuilder.sqlite")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite", "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for driver %q", c.Store.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("store.driver must be sqlite, file or memory, got %q", c.Store.Driver)
	}
	if c.Store.Debounce < 0 {
		return fmt.Errorf("store.debounce must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Report.Style) {
	case "auto", "dark", "light", "notty":
	default:
		return fmt.Errorf("report.style must be auto, dark, light or notty, got %q", c.Report.Style)
	}
	if c.Report.Width < 0 {
		return fmt.Errorf("report.width must not be negative")
	}
	return nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge copies the non-zero values of other over c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Store.Driver != "" {
		c.Store.Driver = other.Store.Driver
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.Debounce != 0 {
		c.Store.Debounce = other.Store.Debounce
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if other.Report.Style != "" {
		c.Report.Style = other.Report.Style
	}
	if other.Report.Width != 0 {
		c.Report.Width = other.Report.Width
	}
	if other.Report.Templates != "" {
		c.Report.Templates = other.Report.Templates
	}
}

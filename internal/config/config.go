// Package config defines the animcore tool configuration and its loader.
package config

import (
	"fmt"
	"time"

	"github.com/decker502/animcore/internal/content"
)

// Config contains process configuration.
type Config struct {
	// ContentDirs lists files or directories of authored animations.
	ContentDirs []string `koanf:"content_dirs"`

	// ShapeFiles lists legacy shape files used to resolve legacyItemAnimation.
	ShapeFiles []string `koanf:"shape_files"`

	// Domain prefixes loaded animation codes ("domain:code"). Empty leaves codes bare.
	Domain string `koanf:"domain"`

	// StorageApp is the application name of the persistent library.
	// Empty keeps the library in memory.
	StorageApp string `koanf:"storage_app"`

	// ExportFormat is yaml or json.
	ExportFormat string `koanf:"export_format"`

	// TickRate is the number of composer ticks per second used when sampling.
	TickRate int `koanf:"tick_rate"`

	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		ContentDirs:      []string{"assets/animations"},
		StorageApp:       "",
		ExportFormat:     string(content.FormatYAML),
		TickRate:         60,
		MetricsNamespace: "animcore",
	}
}

// TickInterval is the duration of one composer tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Format returns the parsed export format.
func (c *Config) Format() content.Format {
	format, err := content.ParseFormat(c.ExportFormat)
	if err != nil {
		return content.FormatYAML
	}
	return format
}

func (c *Config) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalidConfig, c.TickRate)
	}
	if _, err := content.ParseFormat(c.ExportFormat); err != nil {
		return fmt.Errorf("%w: export_format: %w", ErrInvalidConfig, err)
	}
	if c.MetricsNamespace == "" {
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	}
	return nil
}

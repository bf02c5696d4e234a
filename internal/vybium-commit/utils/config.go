package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration is unusable
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the configuration of the commitment pipeline
type Config struct {
	// File parameters
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Output formatting
	Indent int `yaml:"indent"` // JSON indent width, 0 for compact output

	// Logging
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn" or "error"

	// Data preparation parameters
	Prepare PrepareConfig `yaml:"prepare"`
}

// PrepareConfig represents the parameters of the regression preparation stage
type PrepareConfig struct {
	Scale           int64     `yaml:"scale"`            // fixed-point scale for y, m and c
	ThresholdBuffer float64   `yaml:"threshold_buffer"` // fraction of SSE added to the threshold
	X               []int64   `yaml:"x"`
	Y               []float64 `yaml:"y"`
}

// DefaultConfig returns a default configuration matching the reference pipeline
func DefaultConfig() *Config {
	return &Config{
		InputPath:  "temp_data.json",
		OutputPath: "input.json",
		Indent:     2,
		LogLevel:   "info",
		Prepare:    DefaultPrepareConfig(),
	}
}

// DefaultPrepareConfig returns the reference dataset, roughly y = 4x + 5 with noise
func DefaultPrepareConfig() PrepareConfig {
	return PrepareConfig{
		Scale:           1000,
		ThresholdBuffer: 0.05,
		X:               []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		Y:               []float64{9.2, 12.8, 17.1, 21.5, 24.8, 29.1, 32.7, 37.2, 41.0, 45.3},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Validate checks the settings shared by every stage.
// The prepare block is checked by PrepareConfig.Validate.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input path must not be empty", ErrInvalidConfig)
	}

	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path must not be empty", ErrInvalidConfig)
	}

	if c.Indent < 0 || c.Indent > 16 {
		return fmt.Errorf("%w: indent must be between 0 and 16, got %d", ErrInvalidConfig, c.Indent)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// Validate checks if the preparation parameters are valid
func (p *PrepareConfig) Validate() error {
	if p.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive", ErrInvalidConfig)
	}

	if p.ThresholdBuffer < 0 {
		return fmt.Errorf("%w: threshold buffer must not be negative", ErrInvalidConfig)
	}

	if len(p.X) != len(p.Y) {
		return fmt.Errorf("%w: prepare data has %d x values but %d y values",
			ErrInvalidConfig, len(p.X), len(p.Y))
	}

	return nil
}

// ParseLogLevel maps a level name to a slog level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: log level must be 'debug', 'info', 'warn', or 'error', got '%s'",
			ErrInvalidConfig, level)
	}
}

// WithInputPath sets the input path
func (c *Config) WithInputPath(path string) *Config {
	c.InputPath = path
	return c
}

// WithOutputPath sets the output path
func (c *Config) WithOutputPath(path string) *Config {
	c.OutputPath = path
	return c
}

// WithIndent sets the JSON indent width
func (c *Config) WithIndent(indent int) *Config {
	c.Indent = indent
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		InputPath:  c.InputPath,
		OutputPath: c.OutputPath,
		Indent:     c.Indent,
		LogLevel:   c.LogLevel,
		Prepare: PrepareConfig{
			Scale:           c.Prepare.Scale,
			ThresholdBuffer: c.Prepare.ThresholdBuffer,
			X:               append([]int64(nil), c.Prepare.X...),
			Y:               append([]float64(nil), c.Prepare.Y...),
		},
	}
}

// Package config provides configuration loading and management for tile-clean.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/tile-clean/internal/tile"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	Paths      Paths      `yaml:"paths"`
	Resolve    Resolve    `yaml:"resolve"`
	Processing Processing `yaml:"processing"`
	Logging    Logging    `yaml:"logging"`
}

// Paths locates the source rasters and tiles. Relative directories are
// resolved against DataRoot.
type Paths struct {
	// DataRoot is the directory the other paths are relative to
	DataRoot string `yaml:"dataRoot"`

	// SourceDir holds the full source rasters, named <origin><ext>
	SourceDir string `yaml:"sourceDir"`

	// TileDir holds the tiles, named <origin>_x<col>_y<row><ext>
	TileDir string `yaml:"tileDir"`

	// FailDir receives tiles that could not be resolved; relative to TileDir
	FailDir string `yaml:"failDir"`

	// Extension selects tile and source files, including the dot
	Extension string `yaml:"extension"`
}

// Resolve holds the resolver parameters
type Resolve struct {
	TargetRows       int     `yaml:"targetRows"`
	TargetCols       int     `yaml:"targetCols"`
	TrimThreshold    float64 `yaml:"trimThreshold"`
	RecoverThreshold float64 `yaml:"recoverThreshold"`

	// Stride is the step of the grid tiles were cut on; 0 disables it
	Stride int `yaml:"stride"`
}

// Processing controls the batch run
type Processing struct {
	// Workers is how many tiles are resolved at once
	Workers int `yaml:"workers"`

	// RemoveReplaced deletes an input tile once it has been rewritten
	// under a new coordinate-derived name
	RemoveReplaced bool `yaml:"removeReplaced"`
}

// Logging controls log output
type Logging struct {
	// Level is "info" or "debug"
	Level string `yaml:"level"`

	// File, when set, sends logs to a rotating file instead of stderr
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Paths.DataRoot = "Data"
	cfg.Paths.SourceDir = "Resampled"
	cfg.Paths.TileDir = "Tiles"
	cfg.Paths.FailDir = "fail"
	cfg.Paths.Extension = ".tif"

	p := tile.DefaultParams()
	cfg.Resolve.TargetRows = p.Target.Rows
	cfg.Resolve.TargetCols = p.Target.Cols
	cfg.Resolve.TrimThreshold = p.TrimThreshold
	cfg.Resolve.RecoverThreshold = p.RecoverThreshold
	cfg.Resolve.Stride = p.Stride

	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.RemoveReplaced = false

	cfg.Logging.Level = "info"
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxBackups = 2
	cfg.Logging.MaxAgeDays = 28
	cfg.Logging.Compress = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate rejects settings the resolver and batch run cannot work with
func (c *Config) Validate() error {
	var errs []error
	if c.Resolve.TargetRows <= 0 || c.Resolve.TargetCols <= 0 {
		errs = append(errs, fmt.Errorf("target size must be positive, got %dx%d", c.Resolve.TargetRows, c.Resolve.TargetCols))
	}
	if c.Resolve.TrimThreshold < 0 || c.Resolve.RecoverThreshold < 0 {
		errs = append(errs, errors.New("thresholds must not be negative"))
	}
	if c.Resolve.Stride < 0 {
		errs = append(errs, fmt.Errorf("stride must not be negative, got %d", c.Resolve.Stride))
	}
	if c.Processing.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Processing.Workers))
	}
	if c.Paths.Extension == "" {
		errs = append(errs, errors.New("extension must not be empty"))
	}
	return errors.Join(errs...)
}

// Params returns the resolver parameters
func (c *Config) Params() tile.Params {
	return tile.Params{
		Target:           tile.Size{Rows: c.Resolve.TargetRows, Cols: c.Resolve.TargetCols},
		TrimThreshold:    c.Resolve.TrimThreshold,
		RecoverThreshold: c.Resolve.RecoverThreshold,
		Stride:           c.Resolve.Stride,
	}
}

// SourcePath returns the directory holding source rasters
func (c *Config) SourcePath() string {
	return resolvePath(c.Paths.DataRoot, c.Paths.SourceDir)
}

// TilePath returns the directory holding tiles
func (c *Config) TilePath() string {
	return resolvePath(c.Paths.DataRoot, c.Paths.TileDir)
}

// FailPath returns the directory receiving failed tiles
func (c *Config) FailPath() string {
	return resolvePath(c.TilePath(), c.Paths.FailDir)
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

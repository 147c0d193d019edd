// Package config provides unified configuration loading for fdsprep.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config contains all fdsprep configuration settings.
type Config struct {
	// Data describes the raw simulation output layout.
	Data DataConfig `json:"data" yaml:"data"`

	// Output describes where the derivative datasets are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Window configures the sliding-window extraction for the
	// timeseries dataset.
	Window WindowConfig `json:"window" yaml:"window"`

	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// DataConfig describes the raw data tree: one directory per emission point,
// one subdirectory per scenario, each holding the device file.
type DataConfig struct {
	// RawRoot is the root directory containing the emission-point directories.
	RawRoot string `json:"raw_root" yaml:"raw_root"`

	// Catalog is the path to the scenario metadata catalog (.xlsx or .csv).
	Catalog string `json:"catalog" yaml:"catalog"`

	// DeviceFile is the fixed name of the per-scenario sensor file.
	DeviceFile string `json:"device_file" yaml:"device_file"`

	// EmissionPoints lists the emission-point directories to scan.
	// The emission point doubles as the classification label.
	EmissionPoints []string `json:"emission_points" yaml:"emission_points"`
}

// OutputConfig describes the processed dataset files.
type OutputConfig struct {
	// Dir is the directory all dataset files are written into.
	Dir string `json:"dir" yaml:"dir"`

	// Aggregated is the file name of the per-scenario summary dataset.
	Aggregated string `json:"aggregated" yaml:"aggregated"`

	// Complete is the file name of the concatenated raw dataset.
	Complete string `json:"complete" yaml:"complete"`

	// Timeseries is the file name of the windowed dataset.
	Timeseries string `json:"timeseries" yaml:"timeseries"`
}

// WindowConfig configures sliding-window extraction.
type WindowConfig struct {
	// Size is the number of consecutive time steps per window.
	Size int `json:"size" yaml:"size"`

	// Stride is the step between consecutive window start indices.
	Stride int `json:"stride" yaml:"stride"`
}

// LoggingConfig configures fdsprep's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables per-scenario run logging to <output.dir>/runs.jsonl.
	Level string `json:"level" yaml:"level"`

	// Progress enables the terminal progress bar during dataset builds.
	Progress bool `json:"progress" yaml:"progress"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			RawRoot:        filepath.Join("data", "raw"),
			Catalog:        filepath.Join("data", "raw", "metadata.xlsx"),
			DeviceFile:     "particle_devc.csv",
			EmissionPoints: []string{"E1", "E2", "E3"},
		},
		Output: OutputConfig{
			Dir:        filepath.Join("data", "processed"),
			Aggregated: "aggregated_dataset.csv",
			Complete:   "complete_dataset.csv",
			Timeseries: "timeseries_dataset.csv",
		},
		Window: WindowConfig{
			Size:   30,
			Stride: 10,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Progress: true,
		},
	}
}

// LoadFromFile loads configuration from a YAML file, applied over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load builds the effective configuration: defaults, then the config file at
// root/fdsprep.yaml (or configPath when non-empty), then environment
// overrides. A missing default config file is not an error.
func Load(root, configPath string) (*Config, error) {
	var config *Config

	path := configPath
	if path == "" {
		path = filepath.Join(root, "fdsprep.yaml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}

	if path != "" {
		var err error
		config, err = LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		config = Default()
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies FDSPREP_* environment variables over config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FDSPREP_RAW_ROOT"); v != "" {
		config.Data.RawRoot = v
	}
	if v := os.Getenv("FDSPREP_CATALOG"); v != "" {
		config.Data.Catalog = v
	}
	if v := os.Getenv("FDSPREP_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
	if v := os.Getenv("FDSPREP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// Validate checks the configuration for values that would make a run
// meaningless rather than merely unusual.
func (c *Config) Validate() error {
	if c.Data.RawRoot == "" {
		return fmt.Errorf("config: data.raw_root must not be empty")
	}
	if c.Data.Catalog == "" {
		return fmt.Errorf("config: data.catalog must not be empty")
	}
	if c.Data.DeviceFile == "" {
		return fmt.Errorf("config: data.device_file must not be empty")
	}
	if len(c.Data.EmissionPoints) == 0 {
		return fmt.Errorf("config: data.emission_points must not be empty")
	}
	if c.Window.Size < 1 {
		return fmt.Errorf("config: window.size must be >= 1, got %d", c.Window.Size)
	}
	if c.Window.Stride < 1 {
		return fmt.Errorf("config: window.stride must be >= 1, got %d", c.Window.Stride)
	}
	return nil
}

// AggregatedPath returns the full path of the aggregated dataset file.
func (c *Config) AggregatedPath() string {
	return filepath.Join(c.Output.Dir, c.Output.Aggregated)
}

// CompletePath returns the full path of the complete dataset file.
func (c *Config) CompletePath() string {
	return filepath.Join(c.Output.Dir, c.Output.Complete)
}

// TimeseriesPath returns the full path of the timeseries dataset file.
func (c *Config) TimeseriesPath() string {
	return filepath.Join(c.Output.Dir, c.Output.Timeseries)
}

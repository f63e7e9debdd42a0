// Package config holds prover/emulator runtime settings loaded from a TOML
// file, the same shape and loading pattern as the teacher's own
// config.Load/DefaultConfig (spec.md/SPEC_FULL.md §10.1).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the settings a proving run reads before it starts.
type Config struct {
	// Execution settings: bounds on the emulated program itself.
	Execution struct {
		MaxSteps     uint64 `toml:"max_steps"`
		DefaultEntry string `toml:"default_entry"`
		EnableStats  bool   `toml:"enable_stats"`
	} `toml:"execution"`

	// Trace settings: how the padded power-of-two trace is sized.
	Trace struct {
		LogSizeFloor int  `toml:"log_size_floor"`
		BlowupFactor int  `toml:"blowup_factor"`
		EnableTrace  bool `toml:"enable_trace"`
	} `toml:"trace"`

	// Chips holds flags for the two consistency chips. They are loaded and
	// saved with the rest of the file, but chips.Build does not read them:
	// every proving run includes both consistency chips. The CPU chip and
	// the range-check chips have no corresponding flag here.
	Chips struct {
		EnableMemoryConsistency  bool `toml:"enable_memory_consistency"`
		EnableProgramConsistency bool `toml:"enable_program_consistency"`
	} `toml:"chips"`

	// Output settings: where the driver writes its artifacts.
	Output struct {
		TraceFile string `toml:"trace_file"`
		StatsFile string `toml:"stats_file"`
		Format    string `toml:"format"` // json, csv
	} `toml:"output"`
}

// DefaultConfig returns a configuration with safe defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxSteps = 1_000_000
	cfg.Execution.DefaultEntry = "0x1000"
	cfg.Execution.EnableStats = false

	cfg.Trace.LogSizeFloor = 0
	cfg.Trace.BlowupFactor = 2
	cfg.Trace.EnableTrace = false

	cfg.Chips.EnableMemoryConsistency = true
	cfg.Chips.EnableProgramConsistency = true

	cfg.Output.TraceFile = "trace.log"
	cfg.Output.StatsFile = "stats.json"
	cfg.Output.Format = "json"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "zkvm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "zkvm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, overlaying it on DefaultConfig.
// A missing file is not an error: the defaults are returned as-is.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that would make a proving run meaningless.
func (c *Config) Validate() error {
	if c.Trace.BlowupFactor < 2 {
		return &InvalidConfigError{Field: "trace.blowup_factor", Reason: "must be >= 2"}
	}
	if c.Trace.LogSizeFloor < 0 {
		return &InvalidConfigError{Field: "trace.log_size_floor", Reason: "must be >= 0"}
	}
	if c.Execution.MaxSteps == 0 {
		return &InvalidConfigError{Field: "execution.max_steps", Reason: "must be nonzero"}
	}
	return nil
}

// InvalidConfigError is returned by Validate for a setting out of range.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("config: %s is invalid: %s", e.Field, e.Reason)
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", path, err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("config: failed to encode: %w", err)
	}

	return nil
}

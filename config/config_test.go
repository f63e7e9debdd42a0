package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MaxSteps != 1_000_000 {
		t.Errorf("Expected MaxSteps=1000000, got %d", cfg.Execution.MaxSteps)
	}
	if cfg.Execution.DefaultEntry != "0x1000" {
		t.Errorf("Expected DefaultEntry=0x1000, got %s", cfg.Execution.DefaultEntry)
	}

	if cfg.Trace.BlowupFactor != 2 {
		t.Errorf("Expected BlowupFactor=2, got %d", cfg.Trace.BlowupFactor)
	}
	if cfg.Trace.LogSizeFloor != 0 {
		t.Errorf("Expected LogSizeFloor=0, got %d", cfg.Trace.LogSizeFloor)
	}

	if !cfg.Chips.EnableMemoryConsistency {
		t.Error("Expected EnableMemoryConsistency=true")
	}
	if !cfg.Chips.EnableProgramConsistency {
		t.Error("Expected EnableProgramConsistency=true")
	}

	if cfg.Output.Format != "json" {
		t.Errorf("Expected Format=json, got %s", cfg.Output.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate, got %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "zkvm" && path != "config.toml" {
			t.Errorf("Expected path in zkvm directory or fallback, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxSteps = 5_000_000
	cfg.Trace.EnableTrace = true
	cfg.Trace.BlowupFactor = 4
	cfg.Chips.EnableMemoryConsistency = false
	cfg.Output.TraceFile = "custom-trace.log"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Execution.MaxSteps != 5_000_000 {
		t.Errorf("Expected MaxSteps=5000000, got %d", loaded.Execution.MaxSteps)
	}
	if !loaded.Trace.EnableTrace {
		t.Error("Expected EnableTrace=true")
	}
	if loaded.Trace.BlowupFactor != 4 {
		t.Errorf("Expected BlowupFactor=4, got %d", loaded.Trace.BlowupFactor)
	}
	if loaded.Chips.EnableMemoryConsistency {
		t.Error("Expected EnableMemoryConsistency=false")
	}
	if loaded.Output.TraceFile != "custom-trace.log" {
		t.Errorf("Expected TraceFile=custom-trace.log, got %s", loaded.Output.TraceFile)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Execution.MaxSteps != 1_000_000 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[execution]
max_steps = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestLoadRejectsAnInvalidBlowupFactor(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bad-blowup.toml")

	badTOML := `
[trace]
blowup_factor = 1
`
	if err := os.WriteFile(configPath, []byte(badTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Fatal("Expected a validation error for blowup_factor < 2")
	}
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected an *InvalidConfigError, got %T: %v", err, err)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}

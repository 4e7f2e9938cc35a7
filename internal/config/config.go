// Package config manages plumbline's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all analysis configuration.
type Config struct {
	Analysis   AnalysisConfig   `toml:"analysis" json:"analysis"`
	Scoring    ScoringConfig    `toml:"scoring" json:"scoring"`
	Simulation SimulationConfig `toml:"simulation" json:"simulation"`
}

// AnalysisConfig controls the critical path pass.
type AnalysisConfig struct {
	BottleneckThresholdDays int `toml:"bottleneck_threshold_days" json:"bottleneck_threshold_days"`
}

// ScoringConfig controls resilience scoring.
type ScoringConfig struct {
	PathLengthBaseline int `toml:"path_length_baseline" json:"path_length_baseline"`
}

// SimulationConfig controls delay scenario fan-out.
type SimulationConfig struct {
	MaxScenarios int `toml:"max_scenarios" json:"max_scenarios"`
	Workers      int `toml:"workers" json:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{
			BottleneckThresholdDays: 1,
		},
		Scoring: ScoringConfig{
			PathLengthBaseline: 50,
		},
		Simulation: SimulationConfig{
			MaxScenarios: 8,
			Workers:      4,
		},
	}
}

// Load reads the config at path, falling back to defaults when the file does
// not exist. An empty path means ~/.plumbline/config.toml.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = filepath.Join(Home(), "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to path, creating the directory as needed. An empty
// path means ~/.plumbline/config.toml.
func Save(cfg Config, path string) error {
	if path == "" {
		path = filepath.Join(Home(), "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Home returns the plumbline data directory.
func Home() string {
	if env := os.Getenv("PLUMBLINE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".plumbline")
}

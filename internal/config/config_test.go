package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Analysis.BottleneckThresholdDays != 1 {
		t.Errorf("expected threshold 1, got %d", cfg.Analysis.BottleneckThresholdDays)
	}
	if cfg.Scoring.PathLengthBaseline != 50 {
		t.Errorf("expected baseline 50, got %d", cfg.Scoring.PathLengthBaseline)
	}
	if cfg.Simulation.MaxScenarios != 8 {
		t.Errorf("expected 8 scenarios, got %d", cfg.Simulation.MaxScenarios)
	}
	if cfg.Simulation.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Simulation.Workers)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Analysis.BottleneckThresholdDays = 3
	cfg.Simulation.Workers = 2

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch: saved %+v, loaded %+v", cfg, loaded)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[simulation]\nworkers = 2\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Workers != 2 {
		t.Errorf("expected workers 2, got %d", cfg.Simulation.Workers)
	}
	if cfg.Analysis.BottleneckThresholdDays != 1 {
		t.Errorf("expected threshold default 1, got %d", cfg.Analysis.BottleneckThresholdDays)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestHome_RespectsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLUMBLINE_HOME", dir)

	if Home() != dir {
		t.Errorf("expected home %s, got %s", dir, Home())
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScoringConfig_Defaults(t *testing.T) {
	t.Setenv("SCORING_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadScoringConfig()
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}

	if cfg.OptimizationLevel != LevelMedium {
		t.Errorf("expected default level medium, got %s", cfg.OptimizationLevel)
	}
	if cfg.Model.MaxTokens != 1500 {
		t.Errorf("expected default max_tokens 1500, got %d", cfg.Model.MaxTokens)
	}
	if cfg.Model.Temperature != 0 {
		t.Errorf("expected default temperature 0, got %f", cfg.Model.Temperature)
	}
}

func TestLoadScoringConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	content := `optimization_level: high
model:
  max_tokens: 800
  temperature: 0.2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SCORING_CONFIG_PATH", path)

	cfg, err := LoadScoringConfig()
	if err != nil {
		t.Fatalf("LoadScoringConfig failed: %v", err)
	}

	if cfg.OptimizationLevel != LevelHigh {
		t.Errorf("expected high, got %s", cfg.OptimizationLevel)
	}
	if cfg.Model.MaxTokens != 800 {
		t.Errorf("expected 800, got %d", cfg.Model.MaxTokens)
	}
	if cfg.Model.Temperature != 0.2 {
		t.Errorf("expected 0.2, got %f", cfg.Model.Temperature)
	}
}

func TestLoadScoringConfig_InvalidLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("optimization_level: turbo\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SCORING_CONFIG_PATH", path)

	if _, err := LoadScoringConfig(); err == nil {
		t.Error("expected error for unknown optimization level")
	}
}

func TestValidate_TemperatureRange(t *testing.T) {
	cfg := ScoringConfig{
		OptimizationLevel: LevelMedium,
		Model:             ModelParams{MaxTokens: 100, Temperature: 1.5},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for temperature > 1")
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadScoringConfig reads the scoring configuration from
// SCORING_CONFIG_PATH (default configs/scoring.yaml). A missing file is not
// an error; defaults apply.
func LoadScoringConfig() (*ScoringConfig, error) {
	path := os.Getenv("SCORING_CONFIG_PATH")
	if path == "" {
		path = "configs/scoring.yaml"
	}

	var cfg ScoringConfig

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse scoring config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read scoring config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *ScoringConfig) {
	if cfg.OptimizationLevel == "" {
		cfg.OptimizationLevel = LevelMedium
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 1500
	}
}

func (c *ScoringConfig) Validate() error {
	switch c.OptimizationLevel {
	case LevelLow, LevelMedium, LevelHigh:
	default:
		return fmt.Errorf("unknown optimization level %q", c.OptimizationLevel)
	}

	if c.Model.MaxTokens < 1 {
		return fmt.Errorf("model max_tokens must be positive")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model temperature must be in [0,1]")
	}

	return nil
}

package config

// ScoringConfig controls the rubric-scoring call: which optimization level
// to run at and the scoring model's sampling parameters. Criterion weights
// are fixed in code and deliberately not configurable.
type ScoringConfig struct {
	// OptimizationLevel trades prompt size for scoring detail:
	// "low" (full reference + two few-shot examples), "medium" (balanced),
	// "high" (minimal reference, no examples, shorter history window).
	OptimizationLevel string      `yaml:"optimization_level"`
	Model             ModelParams `yaml:"model"`
}

// ModelParams are the sampling parameters for the scoring model.
type ModelParams struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Levels recognised for ScoringConfig.OptimizationLevel.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

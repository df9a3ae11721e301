package aggregator

import (
	"testing"

	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestAggregate_Stats(t *testing.T) {
	agg := New(newTestLogger())

	scored := []ScoredResponse{
		{ModelID: models.ModelGPT5, WeightedScore: 80},
		{ModelID: models.ModelGPT5, WeightedScore: 90},
		{ModelID: models.ModelGPT5, WeightedScore: 70},
		{ModelID: models.ModelClaude, WeightedScore: 95},
	}

	result := agg.Aggregate(1, scored)

	gpt := result.Models[models.ModelGPT5]
	if gpt.SampleCount != 3 {
		t.Errorf("expected 3 samples, got %d", gpt.SampleCount)
	}
	if gpt.Average != 80 {
		t.Errorf("expected average 80, got %f", gpt.Average)
	}
	if gpt.Min != 70 || gpt.Max != 90 {
		t.Errorf("expected min 70 max 90, got %f/%f", gpt.Min, gpt.Max)
	}

	claude := result.Models[models.ModelClaude]
	if claude.SampleCount != 1 || claude.Average != 95 {
		t.Errorf("expected single 95 sample for claude, got %+v", claude)
	}
}

func TestAggregate_RecommendationTies(t *testing.T) {
	agg := New(newTestLogger())

	scored := []ScoredResponse{
		{ModelID: models.ModelGPT5, WeightedScore: 80},
		{ModelID: models.ModelClaude, WeightedScore: 95},
		{ModelID: models.ModelDeepSeek, WeightedScore: 95},
	}

	result := agg.Aggregate(1, scored)

	if len(result.RecommendedModels) != 2 {
		t.Fatalf("expected 2 tied recommendations, got %v", result.RecommendedModels)
	}
	if result.RecommendedModels[0] != models.ModelClaude || result.RecommendedModels[1] != models.ModelDeepSeek {
		t.Errorf("expected sorted tie [claude deepseek], got %v", result.RecommendedModels)
	}
}

func TestAggregate_AverageRounding(t *testing.T) {
	agg := New(newTestLogger())

	scored := []ScoredResponse{
		{ModelID: models.ModelGPT5, WeightedScore: 80},
		{ModelID: models.ModelGPT5, WeightedScore: 85},
		{ModelID: models.ModelGPT5, WeightedScore: 85},
	}

	result := agg.Aggregate(1, scored)

	// 250/3 = 83.333... rounds to 83.33
	if got := result.Models[models.ModelGPT5].Average; got != 83.33 {
		t.Errorf("expected 83.33, got %f", got)
	}
}

func TestAggregate_Empty(t *testing.T) {
	agg := New(newTestLogger())

	result := agg.Aggregate(7, nil)

	if result.ConversationID != 7 {
		t.Errorf("expected conversation id carried through, got %d", result.ConversationID)
	}
	if len(result.Models) != 0 {
		t.Errorf("expected no model stats, got %v", result.Models)
	}
	if result.RecommendedModels == nil || len(result.RecommendedModels) != 0 {
		t.Errorf("expected empty (non-nil) recommendations, got %v", result.RecommendedModels)
	}
}

func TestAggregate_PureRecompute(t *testing.T) {
	agg := New(newTestLogger())

	scored := []ScoredResponse{
		{ModelID: models.ModelGPT5, WeightedScore: 80},
	}

	first := agg.Aggregate(1, scored)
	second := agg.Aggregate(1, scored)

	if first.Models[models.ModelGPT5] != second.Models[models.ModelGPT5] {
		t.Error("repeated aggregation over the same input must give identical stats")
	}
}

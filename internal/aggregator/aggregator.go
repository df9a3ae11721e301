package aggregator

import (
	"math"
	"sort"

	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

// ScoredResponse is the minimal view of a scored model response the
// aggregator needs.
type ScoredResponse struct {
	ModelID       models.ModelID
	WeightedScore float64
}

// Aggregator rolls scored responses up into per-model statistics and a
// cross-model recommendation. It is a pure function of its input: the
// rollup is recomputed from the full scored set on every call, never
// maintained incrementally.
type Aggregator struct {
	logger *zerolog.Logger
}

func New(logger *zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate computes {count, average, min, max} per model and the set of
// recommended models (argmax over averages, ties included, sorted).
func (a *Aggregator) Aggregate(conversationID int64, scored []ScoredResponse) models.AggregateResult {
	result := models.AggregateResult{
		ConversationID:    conversationID,
		Models:            make(map[models.ModelID]models.ModelStats),
		RecommendedModels: []models.ModelID{},
	}

	sums := make(map[models.ModelID]float64)
	for _, resp := range scored {
		stats, ok := result.Models[resp.ModelID]
		if !ok {
			stats = models.ModelStats{Min: resp.WeightedScore, Max: resp.WeightedScore}
		}

		stats.SampleCount++
		stats.Min = math.Min(stats.Min, resp.WeightedScore)
		stats.Max = math.Max(stats.Max, resp.WeightedScore)
		sums[resp.ModelID] += resp.WeightedScore

		result.Models[resp.ModelID] = stats
	}

	bestAvg := math.Inf(-1)
	for modelID, stats := range result.Models {
		stats.Average = math.Round(sums[modelID]/float64(stats.SampleCount)*100) / 100
		result.Models[modelID] = stats

		if stats.Average > bestAvg {
			bestAvg = stats.Average
		}
	}

	for modelID, stats := range result.Models {
		if stats.Average == bestAvg {
			result.RecommendedModels = append(result.RecommendedModels, modelID)
		}
	}
	sort.Slice(result.RecommendedModels, func(i, j int) bool {
		return result.RecommendedModels[i] < result.RecommendedModels[j]
	})

	a.logger.Info().
		Int64("conversation_id", conversationID).
		Int("models", len(result.Models)).
		Int("scored_responses", len(scored)).
		Msg("aggregation complete")

	return result
}

package gateway

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/medbench/medbench/internal/llm"
	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

const defaultMaxTokens = 2000

// Gateway routes queries to heterogeneous LLM backends through one uniform
// interface. The model-id→adapter mapping is resolved at construction.
type Gateway struct {
	adapters      map[models.ModelID]llm.Client
	scoringClient llm.Client
	maxTokens     int
	logger        *zerolog.Logger
}

func New(adapters map[models.ModelID]llm.Client, scoringClient llm.Client, logger *zerolog.Logger) (*Gateway, error) {
	if len(adapters) == 0 {
		return nil, &ConfigurationError{Reason: "no model adapters configured"}
	}
	if scoringClient == nil {
		return nil, &ConfigurationError{Reason: "no scoring model configured"}
	}

	return &Gateway{
		adapters:      adapters,
		scoringClient: scoringClient,
		maxTokens:     defaultMaxTokens,
		logger:        logger,
	}, nil
}

// SupportedModels returns the enumerated model set, sorted for stable
// output.
func (g *Gateway) SupportedModels() []models.ModelID {
	ids := make([]models.ModelID, 0, len(g.adapters))
	for id := range g.adapters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Supports reports whether modelID is in the enumerated set.
func (g *Gateway) Supports(modelID models.ModelID) bool {
	_, ok := g.adapters[modelID]
	return ok
}

// Query sends prompt to the given model, serializing history, when present,
// into a single role-tagged context ahead of the prompt. An unknown id is a
// ConfigurationError; any vendor failure surfaces as an UpstreamError.
func (g *Gateway) Query(ctx context.Context, modelID models.ModelID, prompt string, history []models.HistoryTurn) (string, error) {
	adapter, ok := g.adapters[modelID]
	if !ok {
		return "", &ConfigurationError{Reason: fmt.Sprintf("unknown model %q", modelID)}
	}

	resp, err := adapter.InvokeModel(ctx, llm.Request{
		Prompt:    serializeHistory(history, prompt),
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		g.logger.Error().Err(err).Str("model", string(modelID)).Msg("model query failed")
		return "", &UpstreamError{ModelID: modelID, Err: err}
	}

	return resp.Content, nil
}

// ScoringClient exposes the rubric-scoring model. The classifier and the
// scorer share it.
func (g *Gateway) ScoringClient() llm.Client {
	return g.scoringClient
}

// serializeHistory flattens prior turns into a linear role-tagged prompt
// context, preserving turn order.
func serializeHistory(history []models.HistoryTurn, prompt string) string {
	if len(history) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n\n")
	for _, turn := range history {
		b.WriteString("User: ")
		b.WriteString(turn.Question)
		b.WriteString("\nAssistant: ")
		b.WriteString(turn.Response)
		b.WriteString("\n\n")
	}
	b.WriteString("User: ")
	b.WriteString(prompt)
	return b.String()
}

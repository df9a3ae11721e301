package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medbench/medbench/internal/aggregator"
	"github.com/medbench/medbench/internal/gateway"
	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/scorer"
	"github.com/medbench/medbench/internal/store"
	"github.com/rs/zerolog"
)

// TurnRequest is one benchmark step: a user message fanned out across the
// selected models. ConversationID zero starts a new conversation; an empty
// model list selects every supported model.
type TurnRequest struct {
	ConversationID int64
	Message        string
	Models         []models.ModelID
	RunsPerModel   int // 0 = classifier policy
}

// TurnResult reports the outcome of one turn, including failed runs.
type TurnResult struct {
	Conversation   store.Conversation          `json:"conversation"`
	Turn           store.Turn                  `json:"turn"`
	Classification models.PromptClassification `json:"classification"`
	Results        []models.ModelRunResult     `json:"results"`
}

// ScoreResult reports one scoring pass over a conversation's unscored
// responses.
type ScoreResult struct {
	ConversationID int64 `json:"conversation_id"`
	Scored         int   `json:"scored"`
	Failed         int   `json:"failed"`
}

// Classifier decides the prompt type and run policy for one turn.
type Classifier interface {
	Classify(ctx context.Context, message string, turnNumber int) models.PromptClassification
}

// ResponseScorer scores one stored model response against the rubric.
type ResponseScorer interface {
	Score(ctx context.Context, req scorer.Request) models.RubricScore
}

// Orchestrator drives the benchmark pipeline: classify, fan out, persist,
// score, aggregate. Model runs within a turn are concurrent; each
// (model, run) pair succeeds or fails on its own.
type Orchestrator struct {
	gateway    *gateway.Gateway
	classifier Classifier
	scorer     ResponseScorer
	aggregator *aggregator.Aggregator
	store      store.Store
	logger     *zerolog.Logger
}

func New(gw *gateway.Gateway, cls Classifier, sc ResponseScorer, agg *aggregator.Aggregator, st store.Store, logger *zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:    gw,
		classifier: cls,
		scorer:     sc,
		aggregator: agg,
		store:      st,
		logger:     logger,
	}
}

// RunTurn executes one conversation turn end to end. A failed model run is
// recorded in the result but never persisted and never aborts the other
// runs.
func (o *Orchestrator) RunTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	targets, err := o.resolveModels(req.Models)
	if err != nil {
		return TurnResult{}, err
	}

	var conv store.Conversation
	var turn store.Turn
	var classification models.PromptClassification

	if req.ConversationID == 0 {
		classification = o.classifier.Classify(ctx, req.Message, 1)
		conv, err = o.store.CreateConversation(ctx, classification.Type, classification.RunsPerModel)
		if err != nil {
			return TurnResult{}, fmt.Errorf("failed to create conversation: %w", err)
		}
		turn, err = o.store.AppendTurn(ctx, conv.ID, req.Message)
		if err != nil {
			return TurnResult{}, fmt.Errorf("failed to append turn: %w", err)
		}
	} else {
		conv, err = o.store.GetConversation(ctx, req.ConversationID)
		if err != nil {
			return TurnResult{}, err
		}
		turn, err = o.store.AppendTurn(ctx, conv.ID, req.Message)
		if err != nil {
			return TurnResult{}, fmt.Errorf("failed to append turn: %w", err)
		}
		classification = o.classifier.Classify(ctx, req.Message, turn.TurnNumber)
	}

	runs := classification.RunsPerModel
	if req.RunsPerModel > 0 && classification.Method != models.MethodTurnBased {
		runs = req.RunsPerModel
	}

	histories, err := o.modelHistories(ctx, conv.ID, turn.ID, targets)
	if err != nil {
		return TurnResult{}, err
	}

	o.logger.Info().
		Int64("conversation_id", conv.ID).
		Int("turn", turn.TurnNumber).
		Str("prompt_type", string(classification.Type)).
		Str("method", string(classification.Method)).
		Int("models", len(targets)).
		Int("runs_per_model", runs).
		Msg("running turn")

	results := o.fanOut(ctx, req.Message, targets, runs, histories)

	for _, result := range results {
		if result.Failed() {
			o.logger.Warn().
				Str("model", string(result.ModelID)).
				Int("run", result.Run).
				Str("error", result.Err).
				Msg("model run failed")
			continue
		}
		if _, err := o.store.AppendResponse(ctx, turn.ID, result.ModelID, result.Response, result.Elapsed); err != nil {
			return TurnResult{}, fmt.Errorf("failed to persist response: %w", err)
		}
	}

	return TurnResult{
		Conversation:   conv,
		Turn:           turn,
		Classification: classification,
		Results:        results,
	}, nil
}

// fanOut queries every (model, run) pair concurrently and collects the
// results in a stable model-then-run order.
func (o *Orchestrator) fanOut(ctx context.Context, message string, targets []models.ModelID, runs int, histories map[models.ModelID][]models.HistoryTurn) []models.ModelRunResult {
	results := make(chan models.ModelRunResult, len(targets)*runs)
	var wg sync.WaitGroup

	for _, modelID := range targets {
		for run := 1; run <= runs; run++ {
			wg.Add(1)
			go func(id models.ModelID, run int) {
				defer wg.Done()
				results <- o.queryOnce(ctx, id, run, message, histories[id])
			}(modelID, run)
		}
	}

	wg.Wait()
	close(results)

	byKey := make(map[models.ModelID]map[int]models.ModelRunResult, len(targets))
	for result := range results {
		if byKey[result.ModelID] == nil {
			byKey[result.ModelID] = make(map[int]models.ModelRunResult, runs)
		}
		byKey[result.ModelID][result.Run] = result
	}

	ordered := make([]models.ModelRunResult, 0, len(targets)*runs)
	for _, modelID := range targets {
		for run := 1; run <= runs; run++ {
			ordered = append(ordered, byKey[modelID][run])
		}
	}
	return ordered
}

func (o *Orchestrator) queryOnce(ctx context.Context, modelID models.ModelID, run int, message string, history []models.HistoryTurn) models.ModelRunResult {
	start := time.Now()
	content, err := o.gateway.Query(ctx, modelID, message, history)
	result := models.ModelRunResult{
		ModelID: modelID,
		Run:     run,
		Elapsed: time.Since(start),
	}
	if err != nil {
		result.Err = err.Error()
		return result
	}
	result.Response = content
	return result
}

// modelHistories rebuilds each model's own conversation thread from prior
// turns: the user message paired with that model's first stored response.
// currentTurnID excludes the turn being answered now.
func (o *Orchestrator) modelHistories(ctx context.Context, conversationID, currentTurnID int64, targets []models.ModelID) (map[models.ModelID][]models.HistoryTurn, error) {
	history, err := o.store.ListHistory(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	out := make(map[models.ModelID][]models.HistoryTurn, len(targets))
	for _, entry := range history {
		if entry.Turn.ID == currentTurnID {
			continue
		}
		for _, modelID := range targets {
			for _, resp := range entry.Responses {
				if resp.ModelID != modelID {
					continue
				}
				out[modelID] = append(out[modelID], models.HistoryTurn{
					Question: entry.Turn.UserMessage,
					Response: resp.ResponseText,
				})
				break
			}
		}
	}
	return out, nil
}

// ScoreConversation scores every unscored response of the conversation.
// Scoring failures are recorded as zero scores with an error field, so a
// response is never scored twice and never silently dropped.
func (o *Orchestrator) ScoreConversation(ctx context.Context, conversationID int64) (ScoreResult, error) {
	conv, err := o.store.GetConversation(ctx, conversationID)
	if err != nil {
		return ScoreResult{}, err
	}

	unscored, err := o.store.ListUnscored(ctx, conversationID)
	if err != nil {
		return ScoreResult{}, err
	}

	result := ScoreResult{ConversationID: conversationID}
	for _, item := range unscored {
		promptType := conv.PromptType
		if item.TurnNumber > 1 {
			promptType = models.PromptTypeConversational
		}

		var history []models.HistoryTurn
		if promptType == models.PromptTypeConversational {
			history, err = o.scoringHistory(ctx, conversationID, item.Response.ModelID, item.TurnNumber)
			if err != nil {
				return ScoreResult{}, err
			}
		}

		score := o.scorer.Score(ctx, scorer.Request{
			Question:   item.Question,
			Response:   item.Response.ResponseText,
			PromptType: promptType,
			TurnNumber: item.TurnNumber,
			History:    history,
		})
		if score.Error != "" {
			result.Failed++
		} else {
			result.Scored++
		}

		if err := o.store.MarkScored(ctx, item.Response.ID, score); err != nil {
			return ScoreResult{}, fmt.Errorf("failed to record score for response %d: %w", item.Response.ID, err)
		}
	}

	o.logger.Info().
		Int64("conversation_id", conversationID).
		Int("scored", result.Scored).
		Int("failed", result.Failed).
		Msg("scoring pass complete")

	return result, nil
}

func (o *Orchestrator) scoringHistory(ctx context.Context, conversationID int64, modelID models.ModelID, beforeTurn int) ([]models.HistoryTurn, error) {
	history, err := o.store.ListHistory(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	var out []models.HistoryTurn
	for _, entry := range history {
		if entry.Turn.TurnNumber >= beforeTurn {
			continue
		}
		for _, resp := range entry.Responses {
			if resp.ModelID != modelID {
				continue
			}
			out = append(out, models.HistoryTurn{
				Question: entry.Turn.UserMessage,
				Response: resp.ResponseText,
			})
			break
		}
	}
	return out, nil
}

// Aggregate recomputes the per-model rollup from every scored response of
// the conversation.
func (o *Orchestrator) Aggregate(ctx context.Context, conversationID int64) (models.AggregateResult, error) {
	scored, err := o.store.ListScored(ctx, conversationID)
	if err != nil {
		return models.AggregateResult{}, err
	}

	input := make([]aggregator.ScoredResponse, 0, len(scored))
	for _, resp := range scored {
		if resp.WeightedScore == nil {
			continue
		}
		input = append(input, aggregator.ScoredResponse{
			ModelID:       resp.ModelID,
			WeightedScore: *resp.WeightedScore,
		})
	}

	return o.aggregator.Aggregate(conversationID, input), nil
}

// History returns the stored turn/response log of a conversation.
func (o *Orchestrator) History(ctx context.Context, conversationID int64) (store.Conversation, []store.TurnWithResponses, error) {
	conv, err := o.store.GetConversation(ctx, conversationID)
	if err != nil {
		return store.Conversation{}, nil, err
	}
	history, err := o.store.ListHistory(ctx, conversationID)
	if err != nil {
		return store.Conversation{}, nil, err
	}
	return conv, history, nil
}

// SupportedModels exposes the gateway's model set for transport layers.
func (o *Orchestrator) SupportedModels() []models.ModelID {
	return o.gateway.SupportedModels()
}

func (o *Orchestrator) resolveModels(requested []models.ModelID) ([]models.ModelID, error) {
	if len(requested) == 0 {
		return o.gateway.SupportedModels(), nil
	}
	for _, modelID := range requested {
		if !o.gateway.Supports(modelID) {
			return nil, &gateway.ConfigurationError{Reason: fmt.Sprintf("unknown model %q", modelID)}
		}
	}
	return requested, nil
}

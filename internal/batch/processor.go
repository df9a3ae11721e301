package batch

import (
	"context"
	"sync"

	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/orchestrator"
	"github.com/rs/zerolog"
)

// OutputRecord is the result of one benchmarked question: the turn outcome,
// the scoring pass and the per-model rollup, or the error that stopped it.
type OutputRecord struct {
	LineNumber     int                          `json:"line_number"`
	ConversationID int64                        `json:"conversation_id,omitempty"`
	Classification *models.PromptClassification `json:"classification,omitempty"`
	Scored         int                          `json:"scored,omitempty"`
	ScoreFailures  int                          `json:"score_failures,omitempty"`
	Aggregate      *models.AggregateResult      `json:"aggregate,omitempty"`
	Error          string                       `json:"error,omitempty"`
}

// Processor runs benchmark events through the orchestrator with a fixed
// worker pool. Each record is one full conversation: turn, score, rollup.
type Processor struct {
	orchestrator *orchestrator.Orchestrator
	workers      int
	logger       *zerolog.Logger
}

func NewProcessor(orch *orchestrator.Orchestrator, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		orchestrator: orch,
		workers:      workers,
		logger:       logger,
	}
}

func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan OutputRecord {
	in := make(chan InputRecord)
	out := make(chan OutputRecord)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range in {
				out <- p.processOne(ctx, record)
			}
		}()
	}

	go func() {
		defer close(in)
		for _, record := range records {
			select {
			case in <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Processor) processOne(ctx context.Context, record InputRecord) OutputRecord {
	result := OutputRecord{LineNumber: record.LineNumber}
	if record.Error != nil {
		result.Error = record.Error.Error()
		return result
	}

	targets := make([]models.ModelID, 0, len(record.Event.Models))
	for _, id := range record.Event.Models {
		targets = append(targets, models.ModelID(id))
	}

	turn, err := p.orchestrator.RunTurn(ctx, orchestrator.TurnRequest{
		ConversationID: record.Event.ConversationID,
		Message:        record.Event.Question,
		Models:         targets,
		RunsPerModel:   record.Event.NumRuns,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.ConversationID = turn.Conversation.ID
	result.Classification = &turn.Classification

	scorePass, err := p.orchestrator.ScoreConversation(ctx, turn.Conversation.ID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Scored = scorePass.Scored
	result.ScoreFailures = scorePass.Failed

	aggregate, err := p.orchestrator.Aggregate(ctx, turn.Conversation.ID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Aggregate = &aggregate

	p.logger.Info().
		Int("line", record.LineNumber).
		Int64("conversation_id", turn.Conversation.ID).
		Strs("recommended", modelIDs(aggregate.RecommendedModels)).
		Msg("Record processed")

	return result
}

func modelIDs(ids []models.ModelID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

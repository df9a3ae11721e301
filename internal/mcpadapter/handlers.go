package mcpadapter

import (
	"context"

	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/orchestrator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BenchmarkInput is the MCP tool input schema for running one benchmark turn.
type BenchmarkInput struct {
	ConversationID int64    `json:"conversation_id,omitempty" jsonschema:"existing conversation to continue; omit to start a new one"`
	Question       string   `json:"question" jsonschema:"medical question to fan out across models"`
	Models         []string `json:"models,omitempty" jsonschema:"model ids to query (default: all supported)"`
	NumRuns        int      `json:"num_runs,omitempty" jsonschema:"runs per model (default: classifier policy)"`
}

// ScoreInput is the MCP tool input schema for scoring a conversation.
type ScoreInput struct {
	ConversationID int64 `json:"conversation_id" jsonschema:"conversation whose unscored responses should be scored"`
}

// AggregateInput is the MCP tool input schema for the per-model rollup.
type AggregateInput struct {
	ConversationID int64 `json:"conversation_id" jsonschema:"conversation to aggregate"`
}

// NewBenchmarkHandler returns a tool handler that runs one turn through the
// orchestrator. Pass the returned function to mcp.AddTool.
func NewBenchmarkHandler(orch *orchestrator.Orchestrator) func(context.Context, *mcp.CallToolRequest, BenchmarkInput) (*mcp.CallToolResult, orchestrator.TurnResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BenchmarkInput) (*mcp.CallToolResult, orchestrator.TurnResult, error) {
		targets := make([]models.ModelID, 0, len(input.Models))
		for _, id := range input.Models {
			targets = append(targets, models.ModelID(id))
		}

		result, err := orch.RunTurn(ctx, orchestrator.TurnRequest{
			ConversationID: input.ConversationID,
			Message:        input.Question,
			Models:         targets,
			RunsPerModel:   input.NumRuns,
		})
		return nil, result, err
	}
}

// NewScoreHandler returns a tool handler that scores every unscored response
// of a conversation.
func NewScoreHandler(orch *orchestrator.Orchestrator) func(context.Context, *mcp.CallToolRequest, ScoreInput) (*mcp.CallToolResult, orchestrator.ScoreResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ScoreInput) (*mcp.CallToolResult, orchestrator.ScoreResult, error) {
		result, err := orch.ScoreConversation(ctx, input.ConversationID)
		return nil, result, err
	}
}

// NewAggregateHandler returns a tool handler that recomputes the per-model
// rollup for a conversation.
func NewAggregateHandler(orch *orchestrator.Orchestrator) func(context.Context, *mcp.CallToolRequest, AggregateInput) (*mcp.CallToolResult, models.AggregateResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AggregateInput) (*mcp.CallToolResult, models.AggregateResult, error) {
		result, err := orch.Aggregate(ctx, input.ConversationID)
		return nil, result, err
	}
}

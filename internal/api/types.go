package api

import (
	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/orchestrator"
	"github.com/medbench/medbench/internal/store"
)

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}

// TestRequest starts or continues a benchmark conversation.
type TestRequest struct {
	ConversationID int64    `json:"conversation_id,omitempty" description:"Existing conversation to continue; omit to start a new one"`
	Question       string   `json:"question" description:"User question to fan out across models"`
	Models         []string `json:"models,omitempty" description:"Model ids to query (default: all supported)"`
	NumRuns        int      `json:"num_runs,omitempty" description:"Runs per model (default: classifier policy)"`
}

type TestResponse struct {
	ConversationID int64                       `json:"conversation_id"`
	TurnNumber     int                         `json:"turn_number"`
	Classification models.PromptClassification `json:"classification"`
	Results        []models.ModelRunResult     `json:"results"`
}

type ConversationResponse struct {
	Conversation store.Conversation        `json:"conversation"`
	Turns        []store.TurnWithResponses `json:"turns"`
}

type ModelsResponse struct {
	Models []models.ModelID `json:"models"`
}

func newTestResponse(result orchestrator.TurnResult) TestResponse {
	return TestResponse{
		ConversationID: result.Conversation.ID,
		TurnNumber:     result.Turn.TurnNumber,
		Classification: result.Classification,
		Results:        result.Results,
	}
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/medbench/medbench/internal/models"
)

// ErrNotFound marks a missing conversation, turn or response. The transport
// layer maps it to a client-visible not-found condition.
var ErrNotFound = errors.New("not found")

// Conversation is one benchmark conversation.
type Conversation struct {
	ID           int64             `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	PromptType   models.PromptType `json:"prompt_type"`
	RunsPerModel int               `json:"runs_per_model"`
}

// Turn is one user message within a conversation.
type Turn struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	TurnNumber     int       `json:"turn_number"`
	UserMessage    string    `json:"user_message"`
	CreatedAt      time.Time `json:"created_at"`
}

// Response is one stored model response, optionally scored.
type Response struct {
	ID            int64               `json:"id"`
	TurnID        int64               `json:"turn_id"`
	ModelID       models.ModelID      `json:"model_id"`
	ResponseText  string              `json:"response_text"`
	ElapsedSecs   float64             `json:"elapsed_seconds"`
	CreatedAt     time.Time           `json:"created_at"`
	Scored        bool                `json:"scored"`
	WeightedScore *float64            `json:"weighted_score,omitempty"`
	Score         *models.RubricScore `json:"score,omitempty"`
}

// TurnWithResponses pairs a turn with its stored responses, for history
// reconstruction.
type TurnWithResponses struct {
	Turn      Turn       `json:"turn"`
	Responses []Response `json:"responses"`
}

// UnscoredResponse joins an unscored response with the turn it answers,
// which the scorer needs for context.
type UnscoredResponse struct {
	Response   Response `json:"response"`
	TurnNumber int      `json:"turn_number"`
	Question   string   `json:"question"`
}

// Store is the persistence contract the pipeline depends on. Writes are
// serialized per conversation by the backing store; the core's only
// discipline is to score nothing that is not durably recorded and to never
// double-score.
type Store interface {
	CreateConversation(ctx context.Context, promptType models.PromptType, runsPerModel int) (Conversation, error)
	GetConversation(ctx context.Context, conversationID int64) (Conversation, error)
	AppendTurn(ctx context.Context, conversationID int64, userMessage string) (Turn, error)
	AppendResponse(ctx context.Context, turnID int64, modelID models.ModelID, text string, elapsed time.Duration) (Response, error)
	MarkScored(ctx context.Context, responseID int64, score models.RubricScore) error
	ListUnscored(ctx context.Context, conversationID int64) ([]UnscoredResponse, error)
	ListScored(ctx context.Context, conversationID int64) ([]Response, error)
	ListHistory(ctx context.Context, conversationID int64) ([]TurnWithResponses, error)
}

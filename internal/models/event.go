package models

// BenchmarkEvent is one queued benchmark request consumed from the stream
// intake. AutoScore runs the scoring pass immediately after the turn.
type BenchmarkEvent struct {
	ConversationID int64    `json:"conversation_id,omitempty"`
	Question       string   `json:"question"`
	Models         []string `json:"models,omitempty"`
	NumRuns        int      `json:"num_runs,omitempty"`
	AutoScore      bool     `json:"auto_score,omitempty"`
}

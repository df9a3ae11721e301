package models

import (
	"time"
)

// ModelID identifies one of the candidate LLM backends under test.
type ModelID string

const (
	ModelGPT5     ModelID = "gpt5"
	ModelClaude   ModelID = "claude"
	ModelDeepSeek ModelID = "deepseek"
)

// PromptType drives which rubric a response is scored against.
type PromptType string

const (
	PromptTypeDirect         PromptType = "direct"
	PromptTypeIndirect       PromptType = "indirect"
	PromptTypeConversational PromptType = "conversational"
)

// ClassificationMethod records how a classification was produced.
type ClassificationMethod string

const (
	MethodAI        ClassificationMethod = "ai"
	MethodRuleBased ClassificationMethod = "rule_based"
	MethodTurnBased ClassificationMethod = "turn_based"
)

// PromptClassification is the classifier's verdict for one user turn.
// It is immutable once produced and recomputed per turn.
type PromptClassification struct {
	Type             PromptType           `json:"type"`
	RunsPerModel     int                  `json:"runs_per_model"`
	Method           ClassificationMethod `json:"method"`
	Reasoning        string               `json:"reasoning"`
	DetectedEntities []string             `json:"detected_entities"`
}

// ModelRunResult is one attempt of one model against one prompt.
type ModelRunResult struct {
	ModelID  ModelID       `json:"model_id"`
	Run      int           `json:"run"` // 1-based
	Response string        `json:"response,omitempty"`
	Err      string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Failed reports whether this run produced no usable response.
func (r ModelRunResult) Failed() bool {
	return r.Err != ""
}

// DrugMatch is one withdrawn/refused drug detected in a response.
type DrugMatch struct {
	DrugName        string `json:"drug_name"`
	ActiveSubstance string `json:"active_substance,omitempty"`
	Status          string `json:"status"`
	WithdrawalDate  string `json:"withdrawal_date,omitempty"`
	RefusalDate     string `json:"refusal_date,omitempty"`
	MatchedText     string `json:"matched_text"`
}

// DrugCheck is the diagnostic result of scanning a response for
// withdrawn/refused drugs. It never alters a weighted score.
type DrugCheck struct {
	HasIssues bool        `json:"has_issues"`
	Matches   []DrugMatch `json:"matches,omitempty"`
}

// ProcedureMatch is one recognized procedure detected in a response.
type ProcedureMatch struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Code     string `json:"code"`
}

// ProcedureCheck is the diagnostic result of scanning a response for
// known procedures.
type ProcedureCheck struct {
	HasProcedures bool             `json:"has_procedures"`
	Matches       []ProcedureMatch `json:"matches,omitempty"`
}

// ReferenceChecks carries the diagnostic reference lookups attached to a
// rubric score.
type ReferenceChecks struct {
	WithdrawnDrugs DrugCheck `json:"withdrawn_drugs"`
}

// RubricScore is the output of one scoring invocation. WeightedScore is
// always computed from RawScores and the fixed weight table for the prompt
// type; the scoring model never supplies it directly.
type RubricScore struct {
	RawScores       map[string]float64 `json:"raw_scores"`
	WeightedScore   float64            `json:"weighted_score"`
	MaxScore        float64            `json:"max_score"`
	PromptType      PromptType         `json:"prompt_type"`
	Reasoning       string             `json:"reasoning,omitempty"`
	MissingKeys     []string           `json:"missing_keys,omitempty"`
	Error           string             `json:"error,omitempty"`
	ReferenceChecks *ReferenceChecks   `json:"reference_checks,omitempty"`
}

// ModelStats summarizes the weighted scores of one model within a
// conversation.
type ModelStats struct {
	SampleCount int     `json:"sample_count"`
	Average     float64 `json:"average"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// AggregateResult is the per-conversation rollup, recomputed on demand
// from the full set of scored results.
type AggregateResult struct {
	ConversationID    int64                  `json:"conversation_id"`
	Models            map[ModelID]ModelStats `json:"models"`
	RecommendedModels []ModelID              `json:"recommended_models"`
}

// HistoryTurn is one prior Q/A pair used as conversational scoring context.
type HistoryTurn struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

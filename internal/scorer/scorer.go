package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medbench/medbench/internal/config"
	"github.com/medbench/medbench/internal/llm"
	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/reference"
	"github.com/rs/zerolog"
)

// Request is one scoring invocation: a question, the model response to
// score, the rubric selected by prompt type, and conversational context
// when applicable.
type Request struct {
	Question   string
	Response   string
	PromptType models.PromptType
	TurnNumber int
	History    []models.HistoryTurn
}

// Scorer sends responses through the rubric-scoring model and computes the
// deterministic weighted score. A scoring failure never propagates: it
// yields a zero score with a populated error field.
type Scorer struct {
	client llm.Client
	refs   *reference.Provider
	cfg    config.ScoringConfig
	logger *zerolog.Logger
}

func New(client llm.Client, refs *reference.Provider, cfg config.ScoringConfig, logger *zerolog.Logger) *Scorer {
	return &Scorer{
		client: client,
		refs:   refs,
		cfg:    cfg,
		logger: logger,
	}
}

// Score runs one clean → prompt → invoke → parse → normalize → weigh cycle.
func (s *Scorer) Score(ctx context.Context, req Request) models.RubricScore {
	cleaned := CleanResponse(req.Response)

	failed := func(reason string) models.RubricScore {
		return models.RubricScore{
			RawScores:     map[string]float64{},
			WeightedScore: 0,
			MaxScore:      100,
			PromptType:    req.PromptType,
			Error:         reason,
		}
	}

	data := promptData{
		Question: req.Question,
		Response: cleaned,
	}

	var drugCheck models.DrugCheck
	switch req.PromptType {
	case models.PromptTypeDirect, models.PromptTypeIndirect:
		drugCheck = s.refs.CheckWithdrawnDrug(cleaned)
		data.ReferenceData = s.referenceData()
		data.FewShot = s.fewShot(req.PromptType)
	case models.PromptTypeConversational:
		data.Context = s.renderContext(req, cleaned)
	default:
		return failed(fmt.Sprintf("unknown prompt type: %s", req.PromptType))
	}

	prompt, err := buildPrompt(req.PromptType, data)
	if err != nil {
		s.logger.Error().Err(err).Str("prompt_type", string(req.PromptType)).Msg("failed to build scoring prompt")
		return failed(fmt.Sprintf("prompt build failed: %v", err))
	}

	resp, err := s.client.InvokeModel(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   s.cfg.Model.MaxTokens,
		Temperature: s.cfg.Model.Temperature,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("prompt_type", string(req.PromptType)).Msg("scoring call failed")
		return failed(fmt.Sprintf("scoring call failed: %v", err))
	}

	raw, reasoning, err := decodeRubric(resp.Content)
	if err != nil {
		s.logger.Error().Err(err).Str("content", truncateForLog(resp.Content)).Msg("rubric JSON malformed")
		return failed(fmt.Sprintf("JSON parse error: %v", err))
	}

	raw = NormalizeKeys(raw)
	missing := FillMissing(req.PromptType, raw)
	if len(missing) > 0 {
		s.logger.Warn().Strs("missing_keys", missing).Str("prompt_type", string(req.PromptType)).Msg("rubric keys defaulted to 0")
	}

	result := models.RubricScore{
		RawScores:     raw,
		WeightedScore: WeightedScore(req.PromptType, raw),
		MaxScore:      100,
		PromptType:    req.PromptType,
		Reasoning:     reasoning,
		MissingKeys:   missing,
	}

	if drugCheck.HasIssues {
		names := make([]string, 0, len(drugCheck.Matches))
		for _, m := range drugCheck.Matches {
			names = append(names, m.DrugName)
		}
		if result.Reasoning != "" {
			result.Reasoning += fmt.Sprintf(" | INFO: Detected withdrawn drug(s) in reference: %s", strings.Join(names, ", "))
		}
		result.ReferenceChecks = &models.ReferenceChecks{WithdrawnDrugs: drugCheck}
	}

	return result
}

// decodeRubric tolerantly decodes the scoring model's JSON: numeric fields
// become raw criterion values, the reasoning string is split off, and
// anything else is ignored. The payload shape is not treated as stable.
func decodeRubric(content string) (map[string]float64, string, error) {
	content = llm.StripCodeFence(content)

	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, "", err
	}

	raw := make(map[string]float64)
	var reasoning string
	for key, value := range payload {
		switch v := value.(type) {
		case float64:
			raw[key] = v
		case string:
			if key == "reasoning" {
				reasoning = v
			}
		}
	}

	return raw, reasoning, nil
}

func (s *Scorer) referenceData() string {
	switch s.cfg.OptimizationLevel {
	case config.LevelHigh:
		return s.refs.FormatForPrompt(10, 0)
	case config.LevelLow:
		return s.refs.FormatForPrompt(40, 25)
	default:
		return s.refs.FormatForPrompt(20, 10)
	}
}

func (s *Scorer) fewShot(promptType models.PromptType) string {
	switch s.cfg.OptimizationLevel {
	case config.LevelHigh:
		return ""
	case config.LevelLow:
		return s.refs.FewShotExamples(promptType, 2, true, true)
	default:
		return s.refs.FewShotExamples(promptType, 1, true, false)
	}
}

// renderContext builds the truncated Q/A window for conversational
// scoring: the last 3 prior turns (2 under the high optimization level)
// followed by the current turn in full.
func (s *Scorer) renderContext(req Request, cleanedResponse string) string {
	maxHistory := 3
	if s.cfg.OptimizationLevel == config.LevelHigh {
		maxHistory = 2
	}

	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	var b strings.Builder
	for i, turn := range history {
		fmt.Fprintf(&b, "Turn %d:\nUser: %s\nAssistant: %s...\n\n", i+1, turn.Question, truncate(turn.Response, 150))
	}
	fmt.Fprintf(&b, "Turn %d:\nUser: %s\nAssistant: %s\n", req.TurnNumber, req.Question, cleanedResponse)
	return b.String()
}

// truncate cuts s to n code points; slicing bytes could split a rune and
// leak invalid UTF-8 into prompts.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func truncateForLog(s string) string {
	return truncate(s, 300)
}

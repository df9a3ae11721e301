package classifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medbench/medbench/internal/llm"
	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

const detectionPromptTemplate = `Analyze this medical question and determine if it mentions specific medical entities.

Question: %q

Determine if this question:
- Mentions specific drug names, brand names, or active ingredients (e.g., "aspirin", "Lipitor", "ibuprofen")
- Mentions specific medical procedures (e.g., "colonoscopy", "MRI", "appendectomy")
- Mentions specific medical devices or treatments (e.g., "pacemaker", "insulin pump")
- Mentions specific vaccines (e.g., "MMR vaccine", "flu shot")
- Mentions specific medical tests (e.g., "blood test", "CT scan")

If it mentions ANY specific entity, classify as "direct".
If it asks general questions without specific entities, classify as "indirect".

Respond with ONLY a JSON object:
{
  "type": "direct" or "indirect",
  "reasoning": "brief explanation",
  "detected_entities": ["list", "of", "entities"]
}`

// detection is the intermediate classification before the run-count policy
// is applied.
type detection struct {
	Type             models.PromptType           `json:"type"`
	Method           models.ClassificationMethod `json:"-"`
	Reasoning        string                      `json:"reasoning"`
	DetectedEntities []string                    `json:"detected_entities"`
}

// Classifier assigns a prompt type and run-count policy to a user turn.
// The AI path uses the scoring model; any call or parse failure falls back
// to rule-based keyword detection, never a hard failure.
type Classifier struct {
	client       llm.Client
	runsPerModel int
	logger       *zerolog.Logger
}

func New(client llm.Client, runsPerModel int, logger *zerolog.Logger) *Classifier {
	if runsPerModel < 1 {
		runsPerModel = 1
	}
	return &Classifier{
		client:       client,
		runsPerModel: runsPerModel,
		logger:       logger,
	}
}

// Classify inspects the message and its turn position. Any turn after the
// first short-circuits to conversational with a single run and no external
// call.
func (c *Classifier) Classify(ctx context.Context, message string, turnNumber int) models.PromptClassification {
	if turnNumber > 1 {
		return models.PromptClassification{
			Type:             models.PromptTypeConversational,
			RunsPerModel:     1,
			Method:           models.MethodTurnBased,
			Reasoning:        fmt.Sprintf("Turn number %d > 1, classified as conversational", turnNumber),
			DetectedEntities: []string{},
		}
	}

	det := c.aiDetection(ctx, message)

	// A first turn is direct or indirect by construction; a stray
	// conversational verdict from the model is coerced.
	if det.Type != models.PromptTypeDirect && det.Type != models.PromptTypeIndirect {
		det.Type = models.PromptTypeIndirect
	}

	entities := det.DetectedEntities
	if entities == nil {
		entities = []string{}
	}

	return models.PromptClassification{
		Type:             det.Type,
		RunsPerModel:     c.runsPerModel,
		Method:           det.Method,
		Reasoning:        det.Reasoning,
		DetectedEntities: entities,
	}
}

func (c *Classifier) aiDetection(ctx context.Context, message string) detection {
	resp, err := c.client.InvokeModel(ctx, llm.Request{
		Prompt:    fmt.Sprintf(detectionPromptTemplate, message),
		MaxTokens: 300,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("AI classification failed, falling back to rules")
		return ruleBasedDetection(message)
	}

	content := llm.StripCodeFence(resp.Content)

	var det detection
	if err := json.Unmarshal([]byte(content), &det); err != nil {
		c.logger.Warn().Err(err).Str("content", resp.Content).Msg("classification JSON malformed, falling back to rules")
		return ruleBasedDetection(message)
	}

	det.Method = models.MethodAI
	return det
}

package reference

import (
	"fmt"
	"strings"

	"github.com/medbench/medbench/internal/models"
)

// ScoredExample is one worked scoring example from the curated bank.
type ScoredExample struct {
	Question      string             `json:"question"`
	Response      string             `json:"response"`
	Scores        map[string]float64 `json:"scores"`
	WeightedScore float64            `json:"weighted_score"`
	Explanation   string             `json:"explanation"`
	Turns         []ExampleTurn      `json:"turns,omitempty"`
}

// ExampleTurn is one turn of a conversational example.
type ExampleTurn struct {
	Turn          int                `json:"turn"`
	Question      string             `json:"question"`
	Response      string             `json:"response"`
	Scores        map[string]float64 `json:"scores,omitempty"`
	WeightedScore float64            `json:"weighted_score,omitempty"`
	Explanation   string             `json:"explanation,omitempty"`
}

// ExampleBank groups worked examples per prompt type.
type ExampleBank struct {
	Direct         []ScoredExample `json:"direct_prompt_examples"`
	Indirect       []ScoredExample `json:"indirect_prompt_examples"`
	Conversational []ScoredExample `json:"conversational_prompt_examples"`
}

const (
	highScoreFloor = 90
	lowScoreCeil   = 30
)

// FewShotExamples selects up to count worked examples for the prompt type
// and renders them for a scoring prompt. When both flags are set it prefers
// one high-scoring (>= 90) and one low-scoring (<= 30) example, backfilling
// with arbitrary unused ones. Selection is randomized through the
// provider's rng; callers must not depend on which examples are chosen.
func (p *Provider) FewShotExamples(promptType models.PromptType, count int, includeHigh, includeLow bool) string {
	if p.examples == nil || count <= 0 {
		return ""
	}

	var pool []ScoredExample
	switch promptType {
	case models.PromptTypeDirect:
		pool = p.examples.Direct
	case models.PromptTypeIndirect:
		pool = p.examples.Indirect
	case models.PromptTypeConversational:
		pool = p.examples.Conversational
	default:
		return ""
	}
	if len(pool) == 0 {
		return ""
	}

	used := make(map[int]bool)
	var selected []ScoredExample

	pick := func(candidates []int) {
		if len(candidates) == 0 {
			return
		}
		i := candidates[p.rng.Intn(len(candidates))]
		used[i] = true
		selected = append(selected, pool[i])
	}

	if includeHigh {
		pick(indexesWhere(pool, used, func(ex ScoredExample) bool { return ex.WeightedScore >= highScoreFloor }))
	}
	if includeLow {
		pick(indexesWhere(pool, used, func(ex ScoredExample) bool { return ex.WeightedScore <= lowScoreCeil }))
	}

	for len(selected) < count && len(selected) < len(pool) {
		pick(indexesWhere(pool, used, func(ScoredExample) bool { return true }))
	}

	if len(selected) > count {
		selected = selected[:count]
	}

	return renderExamples(promptType, selected)
}

func indexesWhere(pool []ScoredExample, used map[int]bool, match func(ScoredExample) bool) []int {
	var out []int
	for i, ex := range pool {
		if !used[i] && match(ex) {
			out = append(out, i)
		}
	}
	return out
}

func renderExamples(promptType models.PromptType, examples []ScoredExample) string {
	var out []string
	out = append(out, "\n=== FEW-SHOT SCORING EXAMPLES ===\n")

	for i, example := range examples {
		out = append(out, fmt.Sprintf("Example %d:", i+1))

		if promptType == models.PromptTypeConversational {
			for _, turn := range example.Turns {
				out = append(out,
					fmt.Sprintf("  Turn %d: %s", turn.Turn, turn.Question),
					fmt.Sprintf("  Response: %s...", truncate(turn.Response, 100)),
				)
				if len(turn.Scores) > 0 {
					out = append(out,
						fmt.Sprintf("  Scores: %v", turn.Scores),
						fmt.Sprintf("  Weighted Score: %g/100", turn.WeightedScore),
						fmt.Sprintf("  Explanation: %s", turn.Explanation),
					)
				}
			}
		} else {
			out = append(out,
				fmt.Sprintf("  Question: %s", example.Question),
				fmt.Sprintf("  Response: %s...", truncate(example.Response, 150)),
				fmt.Sprintf("  Scores: %v", example.Scores),
				fmt.Sprintf("  Weighted Score: %g/100", example.WeightedScore),
				fmt.Sprintf("  Explanation: %s", example.Explanation),
			)
		}

		out = append(out, "")
	}

	return strings.Join(out, "\n")
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

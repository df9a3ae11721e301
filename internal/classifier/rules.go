package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medbench/medbench/internal/models"
)

// Fallback keyword patterns, matched case-insensitively against the
// lower-cased message. Presence of any match classifies the turn as direct.
var drugPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(aspirin|ibuprofen|acetaminophen|tylenol|advil|motrin)\b`),
	regexp.MustCompile(`\b(lipitor|metformin|lisinopril|atorvastatin|omeprazole)\b`),
	regexp.MustCompile(`\b(insulin|warfarin|prednisone|albuterol|levothyroxine)\b`),
	regexp.MustCompile(`\b(amoxicillin|azithromycin|ciprofloxacin|penicillin)\b`),
}

var procedurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(surgery|operation|procedure)\b`),
	regexp.MustCompile(`\b(colonoscopy|endoscopy|biopsy|x-ray|mri|ct scan)\b`),
	regexp.MustCompile(`\b(appendectomy|cholecystectomy|hysterectomy)\b`),
}

// ruleBasedDetection pattern-matches the fixed drug/procedure keyword lists
// against the message. It is the deterministic fallback when the AI path
// fails.
func ruleBasedDetection(message string) detection {
	lower := strings.ToLower(message)

	var entities []string
	for _, pattern := range drugPatterns {
		entities = append(entities, pattern.FindAllString(lower, -1)...)
	}
	for _, pattern := range procedurePatterns {
		entities = append(entities, pattern.FindAllString(lower, -1)...)
	}

	if len(entities) == 0 {
		return detection{
			Type:      models.PromptTypeIndirect,
			Method:    models.MethodRuleBased,
			Reasoning: "No specific drug or procedure names detected",
		}
	}

	deduped := dedupe(entities)
	preview := deduped
	if len(preview) > 3 {
		preview = preview[:3]
	}

	return detection{
		Type:             models.PromptTypeDirect,
		Method:           models.MethodRuleBased,
		Reasoning:        fmt.Sprintf("Detected specific entities: %s", strings.Join(preview, ", ")),
		DetectedEntities: deduped,
	}
}

func dedupe(entities []string) []string {
	seen := make(map[string]bool, len(entities))
	var out []string
	for _, e := range entities {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

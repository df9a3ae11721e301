package scorer

import (
	"regexp"
	"strings"
)

// Patterns stripped from responses before they reach the scoring model, so
// the rubric call cannot be biased by which vendor produced the text.
var (
	modelNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(GPT-?[0-9]+|Claude|Gemini|DeepSeek|ChatGPT|OpenAI)\b`),
		regexp.MustCompile(`(?i)\bAs (an AI|a language model|Claude|GPT)\b`),
	}
	urlPattern      = regexp.MustCompile(`https?://[^\s]+`)
	wwwPattern      = regexp.MustCompile(`www\.[^\s]+`)
	sourcePattern   = regexp.MustCompile(`(?i)\(Source:.*?\)`)
	citationPattern = regexp.MustCompile(`\[.*?\]`)
)

// CleanResponse removes vendor self-identification, URLs and citation
// markers from a model response.
func CleanResponse(text string) string {
	cleaned := text

	for _, pattern := range modelNamePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = wwwPattern.ReplaceAllString(cleaned, "")
	cleaned = sourcePattern.ReplaceAllString(cleaned, "")
	cleaned = citationPattern.ReplaceAllString(cleaned, "")

	return strings.TrimSpace(cleaned)
}

package llm

import (
	"context"
	"strings"
)

// Client is the capability every vendor adapter implements: given a prompt,
// return generated text or fail. Retry policy, if any, lives inside the
// adapter, never in callers.
type Client interface {
	InvokeModel(ctx context.Context, request Request) (*Response, error)
}

// StripCodeFence removes markdown code-fence wrapping (```json ... ```)
// from model output before JSON decoding. Content without a fence is
// returned trimmed and otherwise unchanged.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	firstNewline := strings.Index(content, "\n")
	if firstNewline == -1 {
		return content
	}

	closing := strings.LastIndex(content, "```")
	if closing == -1 || closing <= firstNewline {
		return content
	}

	return strings.TrimSpace(content[firstNewline+1 : closing])
}

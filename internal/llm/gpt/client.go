package gpt

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Client struct {
	Client  openai.Client
	ModelID string
}

// NewClient builds an OpenAI chat client. Retries are delegated to the SDK.
func NewClient(apiKey string, model string) (*Client, error) {
	return newClient(apiKey, model, "")
}

// NewCompatibleClient builds a client against an OpenAI-compatible endpoint
// such as DeepSeek.
func NewCompatibleClient(apiKey string, model string, baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required for a compatible endpoint")
	}
	return newClient(apiKey, model, baseURL)
}

func newClient(apiKey string, model string, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model ID is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		Client:  openai.NewClient(opts...),
		ModelID: model,
	}, nil
}

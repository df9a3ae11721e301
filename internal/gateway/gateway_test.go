package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medbench/medbench/internal/llm"
	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// MockLLMClient for testing
type MockLLMClient struct {
	ResponseToReturn *llm.Response
	ErrorToReturn    error
	LastRequest      *llm.Request
}

func (m *MockLLMClient) InvokeModel(ctx context.Context, request llm.Request) (*llm.Response, error) {
	m.LastRequest = &request
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

func TestNew_RequiresAdapters(t *testing.T) {
	_, err := New(map[models.ModelID]llm.Client{}, &MockLLMClient{}, newTestLogger())

	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigurationError for empty adapter set, got %v", err)
	}
}

func TestNew_RequiresScoringClient(t *testing.T) {
	adapters := map[models.ModelID]llm.Client{models.ModelGPT5: &MockLLMClient{}}

	if _, err := New(adapters, nil, newTestLogger()); err == nil {
		t.Fatal("expected error for missing scoring client")
	}
}

func TestQuery_UnknownModel(t *testing.T) {
	adapters := map[models.ModelID]llm.Client{models.ModelGPT5: &MockLLMClient{}}
	gw, err := New(adapters, &MockLLMClient{}, newTestLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = gw.Query(context.Background(), "gemini", "test", nil)

	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigurationError for unknown model, got %v", err)
	}
}

func TestQuery_UpstreamFailure(t *testing.T) {
	adapters := map[models.ModelID]llm.Client{
		models.ModelClaude: &MockLLMClient{ErrorToReturn: errors.New("throttled")},
	}
	gw, _ := New(adapters, &MockLLMClient{}, newTestLogger())

	_, err := gw.Query(context.Background(), models.ModelClaude, "test", nil)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.ModelID != models.ModelClaude {
		t.Errorf("expected failing model id in error, got %s", upstreamErr.ModelID)
	}
	if !strings.Contains(err.Error(), "throttled") {
		t.Errorf("expected wrapped vendor error, got %q", err.Error())
	}
}

func TestQuery_Success(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.Response{Content: "an answer"}}
	adapters := map[models.ModelID]llm.Client{models.ModelGPT5: mock}
	gw, _ := New(adapters, &MockLLMClient{}, newTestLogger())

	content, err := gw.Query(context.Background(), models.ModelGPT5, "Is aspirin safe?", nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if content != "an answer" {
		t.Errorf("expected adapter content, got %q", content)
	}
	if mock.LastRequest.Prompt != "Is aspirin safe?" {
		t.Errorf("expected bare prompt without history, got %q", mock.LastRequest.Prompt)
	}
}

func TestQuery_SerializesHistory(t *testing.T) {
	mock := &MockLLMClient{ResponseToReturn: &llm.Response{Content: "ok"}}
	adapters := map[models.ModelID]llm.Client{models.ModelDeepSeek: mock}
	gw, _ := New(adapters, &MockLLMClient{}, newTestLogger())

	history := []models.HistoryTurn{
		{Question: "Is aspirin safe?", Response: "Generally, yes."},
		{Question: "What about daily use?", Response: "Ask your doctor."},
	}

	if _, err := gw.Query(context.Background(), models.ModelDeepSeek, "And with alcohol?", history); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	prompt := mock.LastRequest.Prompt
	if !strings.HasPrefix(prompt, "Previous conversation:") {
		t.Errorf("expected history preamble, got %q", prompt)
	}

	first := strings.Index(prompt, "Is aspirin safe?")
	second := strings.Index(prompt, "What about daily use?")
	current := strings.Index(prompt, "And with alcohol?")
	if first == -1 || second == -1 || current == -1 {
		t.Fatalf("expected all turns in prompt, got %q", prompt)
	}
	if !(first < second && second < current) {
		t.Error("history must be serialized in turn order, current prompt last")
	}
}

func TestSupportedModels_Sorted(t *testing.T) {
	adapters := map[models.ModelID]llm.Client{
		models.ModelGPT5:     &MockLLMClient{},
		models.ModelClaude:   &MockLLMClient{},
		models.ModelDeepSeek: &MockLLMClient{},
	}
	gw, _ := New(adapters, &MockLLMClient{}, newTestLogger())

	ids := gw.SupportedModels()
	if len(ids) != 3 {
		t.Fatalf("expected 3 models, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("expected sorted model ids, got %v", ids)
		}
	}

	if !gw.Supports(models.ModelClaude) {
		t.Error("expected claude to be supported")
	}
	if gw.Supports("gemini") {
		t.Error("gemini should not be supported")
	}
}

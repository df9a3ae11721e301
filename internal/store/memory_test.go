package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medbench/medbench/internal/models"
)

func TestMemoryStore_ConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	conv, err := s.CreateConversation(ctx, models.PromptTypeDirect, 5)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conv.ID == 0 {
		t.Fatal("expected non-zero conversation id")
	}

	fetched, err := s.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if fetched.PromptType != models.PromptTypeDirect || fetched.RunsPerModel != 5 {
		t.Errorf("unexpected conversation: %+v", fetched)
	}

	if _, err := s.GetConversation(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_TurnNumbering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	conv, _ := s.CreateConversation(ctx, models.PromptTypeDirect, 1)

	first, err := s.AppendTurn(ctx, conv.ID, "first question")
	if err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	second, _ := s.AppendTurn(ctx, conv.ID, "second question")

	if first.TurnNumber != 1 || second.TurnNumber != 2 {
		t.Errorf("expected turn numbers 1 and 2, got %d and %d", first.TurnNumber, second.TurnNumber)
	}

	if _, err := s.AppendTurn(ctx, 999, "orphan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing conversation, got %v", err)
	}
}

func TestMemoryStore_ScoringFlow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	conv, _ := s.CreateConversation(ctx, models.PromptTypeDirect, 1)
	turn, _ := s.AppendTurn(ctx, conv.ID, "question")

	resp1, err := s.AppendResponse(ctx, turn.ID, models.ModelGPT5, "answer one", 2*time.Second)
	if err != nil {
		t.Fatalf("AppendResponse failed: %v", err)
	}
	resp2, _ := s.AppendResponse(ctx, turn.ID, models.ModelClaude, "answer two", time.Second)

	unscored, err := s.ListUnscored(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListUnscored failed: %v", err)
	}
	if len(unscored) != 2 {
		t.Fatalf("expected 2 unscored responses, got %d", len(unscored))
	}
	if unscored[0].Question != "question" || unscored[0].TurnNumber != 1 {
		t.Errorf("expected question context joined, got %+v", unscored[0])
	}

	score := models.RubricScore{
		RawScores:     map[string]float64{"hallucination": 0},
		WeightedScore: 85.5,
		MaxScore:      100,
		PromptType:    models.PromptTypeDirect,
	}
	if err := s.MarkScored(ctx, resp1.ID, score); err != nil {
		t.Fatalf("MarkScored failed: %v", err)
	}

	unscored, _ = s.ListUnscored(ctx, conv.ID)
	if len(unscored) != 1 || unscored[0].Response.ID != resp2.ID {
		t.Errorf("scored response must leave the unscored set")
	}

	scored, err := s.ListScored(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListScored failed: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored response, got %d", len(scored))
	}
	if scored[0].WeightedScore == nil || *scored[0].WeightedScore != 85.5 {
		t.Errorf("expected weighted score 85.5 persisted, got %+v", scored[0].WeightedScore)
	}
	if scored[0].Score == nil || scored[0].Score.PromptType != models.PromptTypeDirect {
		t.Errorf("expected full score payload persisted")
	}

	if err := s.MarkScored(ctx, 999, score); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing response, got %v", err)
	}
}

func TestMemoryStore_ListHistory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	conv, _ := s.CreateConversation(ctx, models.PromptTypeConversational, 1)
	turn1, _ := s.AppendTurn(ctx, conv.ID, "first")
	turn2, _ := s.AppendTurn(ctx, conv.ID, "second")

	s.AppendResponse(ctx, turn1.ID, models.ModelGPT5, "r1", time.Second)
	s.AppendResponse(ctx, turn2.ID, models.ModelGPT5, "r2", time.Second)

	history, err := s.ListHistory(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Turn.TurnNumber != 1 || history[1].Turn.TurnNumber != 2 {
		t.Error("history must be ordered by turn number")
	}
	if len(history[0].Responses) != 1 || history[0].Responses[0].ResponseText != "r1" {
		t.Errorf("expected responses grouped under their turn, got %+v", history[0].Responses)
	}
}

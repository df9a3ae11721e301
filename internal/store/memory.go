package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/medbench/medbench/internal/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// single-process runs without a database.
type MemoryStore struct {
	mu            sync.Mutex
	nextID        int64
	conversations map[int64]Conversation
	turns         map[int64]Turn
	responses     map[int64]Response
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[int64]Conversation),
		turns:         make(map[int64]Turn),
		responses:     make(map[int64]Response),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateConversation(_ context.Context, promptType models.PromptType, runsPerModel int) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := Conversation{
		ID:           s.id(),
		CreatedAt:    time.Now(),
		PromptType:   promptType,
		RunsPerModel: runsPerModel,
	}
	s.conversations[conv.ID] = conv
	return conv, nil
}

func (s *MemoryStore) GetConversation(_ context.Context, conversationID int64) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return conv, nil
}

func (s *MemoryStore) AppendTurn(_ context.Context, conversationID int64, userMessage string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return Turn{}, ErrNotFound
	}

	turnNumber := 1
	for _, t := range s.turns {
		if t.ConversationID == conversationID {
			turnNumber++
		}
	}

	turn := Turn{
		ID:             s.id(),
		ConversationID: conversationID,
		TurnNumber:     turnNumber,
		UserMessage:    userMessage,
		CreatedAt:      time.Now(),
	}
	s.turns[turn.ID] = turn
	return turn, nil
}

func (s *MemoryStore) AppendResponse(_ context.Context, turnID int64, modelID models.ModelID, text string, elapsed time.Duration) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[turnID]; !ok {
		return Response{}, ErrNotFound
	}

	resp := Response{
		ID:           s.id(),
		TurnID:       turnID,
		ModelID:      modelID,
		ResponseText: text,
		ElapsedSecs:  elapsed.Seconds(),
		CreatedAt:    time.Now(),
	}
	s.responses[resp.ID] = resp
	return resp, nil
}

func (s *MemoryStore) MarkScored(_ context.Context, responseID int64, score models.RubricScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, ok := s.responses[responseID]
	if !ok {
		return ErrNotFound
	}

	weighted := score.WeightedScore
	resp.Scored = true
	resp.WeightedScore = &weighted
	resp.Score = &score
	s.responses[responseID] = resp
	return nil
}

func (s *MemoryStore) ListUnscored(_ context.Context, conversationID int64) ([]UnscoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return nil, ErrNotFound
	}

	var out []UnscoredResponse
	for _, resp := range s.responses {
		if resp.Scored {
			continue
		}
		turn, ok := s.turns[resp.TurnID]
		if !ok || turn.ConversationID != conversationID {
			continue
		}
		out = append(out, UnscoredResponse{
			Response:   resp,
			TurnNumber: turn.TurnNumber,
			Question:   turn.UserMessage,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Response.ID < out[j].Response.ID })
	return out, nil
}

func (s *MemoryStore) ListScored(_ context.Context, conversationID int64) ([]Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return nil, ErrNotFound
	}

	var out []Response
	for _, resp := range s.responses {
		if !resp.Scored {
			continue
		}
		turn, ok := s.turns[resp.TurnID]
		if !ok || turn.ConversationID != conversationID {
			continue
		}
		out = append(out, resp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListHistory(_ context.Context, conversationID int64) ([]TurnWithResponses, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return nil, ErrNotFound
	}

	var turns []Turn
	for _, turn := range s.turns {
		if turn.ConversationID == conversationID {
			turns = append(turns, turn)
		}
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].TurnNumber < turns[j].TurnNumber })

	out := make([]TurnWithResponses, 0, len(turns))
	for _, turn := range turns {
		entry := TurnWithResponses{Turn: turn}
		for _, resp := range s.responses {
			if resp.TurnID == turn.ID {
				entry.Responses = append(entry.Responses, resp)
			}
		}
		sort.Slice(entry.Responses, func(i, j int) bool { return entry.Responses[i].ID < entry.Responses[j].ID })
		out = append(out, entry)
	}

	return out, nil
}

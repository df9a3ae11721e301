package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medbench/medbench/internal/models"
)

// PostgresConfig holds connection settings for the benchmark database.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// PostgresStore implements Store on a pgx connection pool. Schema lives in
// migrations/schema.sql.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, config PostgresConfig) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateConversation(ctx context.Context, promptType models.PromptType, runsPerModel int) (Conversation, error) {
	query := `
		INSERT INTO conversations (prompt_type, runs_per_model)
		VALUES ($1, $2)
		RETURNING id, created_at`

	conv := Conversation{PromptType: promptType, RunsPerModel: runsPerModel}
	if err := s.pool.QueryRow(ctx, query, string(promptType), runsPerModel).Scan(&conv.ID, &conv.CreatedAt); err != nil {
		return Conversation{}, fmt.Errorf("failed to insert conversation: %w", err)
	}

	return conv, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, conversationID int64) (Conversation, error) {
	query := `
		SELECT id, created_at, prompt_type, runs_per_model
		FROM conversations
		WHERE id = $1`

	var conv Conversation
	var promptType string
	err := s.pool.QueryRow(ctx, query, conversationID).Scan(&conv.ID, &conv.CreatedAt, &promptType, &conv.RunsPerModel)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("failed to fetch conversation %d: %w", conversationID, err)
	}

	conv.PromptType = models.PromptType(promptType)
	return conv, nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, conversationID int64, userMessage string) (Turn, error) {
	query := `
		INSERT INTO turns (conversation_id, turn_number, user_message)
		SELECT $1, COALESCE(MAX(turn_number), 0) + 1, $2
		FROM turns WHERE conversation_id = $1
		RETURNING id, turn_number, created_at`

	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return Turn{}, err
	}

	turn := Turn{ConversationID: conversationID, UserMessage: userMessage}
	if err := s.pool.QueryRow(ctx, query, conversationID, userMessage).Scan(&turn.ID, &turn.TurnNumber, &turn.CreatedAt); err != nil {
		return Turn{}, fmt.Errorf("failed to insert turn: %w", err)
	}

	return turn, nil
}

func (s *PostgresStore) AppendResponse(ctx context.Context, turnID int64, modelID models.ModelID, text string, elapsed time.Duration) (Response, error) {
	query := `
		INSERT INTO responses (turn_id, model_id, response_text, elapsed_seconds)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	resp := Response{
		TurnID:       turnID,
		ModelID:      modelID,
		ResponseText: text,
		ElapsedSecs:  elapsed.Seconds(),
	}
	err := s.pool.QueryRow(ctx, query, turnID, string(modelID), text, resp.ElapsedSecs).Scan(&resp.ID, &resp.CreatedAt)
	if err != nil {
		return Response{}, fmt.Errorf("failed to insert response: %w", err)
	}

	return resp, nil
}

func (s *PostgresStore) MarkScored(ctx context.Context, responseID int64, score models.RubricScore) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}

	query := `
		UPDATE responses
		SET scored = TRUE, weighted_score = $2, score = $3
		WHERE id = $1`

	result, err := s.pool.Exec(ctx, query, responseID, score.WeightedScore, payload)
	if err != nil {
		return fmt.Errorf("failed to mark response %d scored: %w", responseID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) ListUnscored(ctx context.Context, conversationID int64) ([]UnscoredResponse, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.turn_id, r.model_id, r.response_text, r.elapsed_seconds, r.created_at,
		       t.turn_number, t.user_message
		FROM responses r
		JOIN turns t ON t.id = r.turn_id
		WHERE t.conversation_id = $1 AND NOT r.scored
		ORDER BY r.id`

	rows, err := s.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored responses: %w", err)
	}
	defer rows.Close()

	var out []UnscoredResponse
	for rows.Next() {
		var item UnscoredResponse
		var modelID string
		err := rows.Scan(&item.Response.ID, &item.Response.TurnID, &modelID, &item.Response.ResponseText,
			&item.Response.ElapsedSecs, &item.Response.CreatedAt, &item.TurnNumber, &item.Question)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response row: %w", err)
		}
		item.Response.ModelID = models.ModelID(modelID)
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return out, nil
}

func (s *PostgresStore) ListScored(ctx context.Context, conversationID int64) ([]Response, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.turn_id, r.model_id, r.response_text, r.elapsed_seconds, r.created_at,
		       r.weighted_score, r.score
		FROM responses r
		JOIN turns t ON t.id = r.turn_id
		WHERE t.conversation_id = $1 AND r.scored
		ORDER BY r.id`

	rows, err := s.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored responses: %w", err)
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		resp, err := scanScoredResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return out, nil
}

func (s *PostgresStore) ListHistory(ctx context.Context, conversationID int64) ([]TurnWithResponses, error) {
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	turnQuery := `
		SELECT id, conversation_id, turn_number, user_message, created_at
		FROM turns
		WHERE conversation_id = $1
		ORDER BY turn_number`

	rows, err := s.pool.Query(ctx, turnQuery, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer rows.Close()

	var out []TurnWithResponses
	for rows.Next() {
		var entry TurnWithResponses
		if err := rows.Scan(&entry.Turn.ID, &entry.Turn.ConversationID, &entry.Turn.TurnNumber, &entry.Turn.UserMessage, &entry.Turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for i := range out {
		responses, err := s.listTurnResponses(ctx, out[i].Turn.ID)
		if err != nil {
			return nil, err
		}
		out[i].Responses = responses
	}

	return out, nil
}

func (s *PostgresStore) listTurnResponses(ctx context.Context, turnID int64) ([]Response, error) {
	query := `
		SELECT id, turn_id, model_id, response_text, elapsed_seconds, created_at,
		       weighted_score, score
		FROM responses
		WHERE turn_id = $1
		ORDER BY id`

	rows, err := s.pool.Query(ctx, query, turnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses for turn %d: %w", turnID, err)
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		resp, err := scanScoredResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return out, nil
}

func scanScoredResponse(rows pgx.Rows) (Response, error) {
	var resp Response
	var modelID string
	var payload []byte
	err := rows.Scan(&resp.ID, &resp.TurnID, &modelID, &resp.ResponseText, &resp.ElapsedSecs,
		&resp.CreatedAt, &resp.WeightedScore, &payload)
	if err != nil {
		return Response{}, fmt.Errorf("failed to scan response row: %w", err)
	}

	resp.ModelID = models.ModelID(modelID)
	resp.Scored = resp.WeightedScore != nil
	if len(payload) > 0 {
		var score models.RubricScore
		if err := json.Unmarshal(payload, &score); err != nil {
			return Response{}, fmt.Errorf("failed to decode stored score: %w", err)
		}
		resp.Score = &score
	}

	return resp, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/orchestrator"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Consumer struct {
	client       *redis.Client
	stream       string
	groupID      string
	consumerName string
	orchestrator *orchestrator.Orchestrator
	logger       *zerolog.Logger
}

func NewConsumer(client *redis.Client, stream string, groupID string, consumerName string, orch *orchestrator.Orchestrator, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:       client,
		stream:       stream,
		groupID:      groupID,
		consumerName: consumerName,
		orchestrator: orch,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	// No-op
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var event models.BenchmarkEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // ack malformed messages so they are not redelivered
		return
	}

	if event.Question == "" {
		c.logger.Error().Str("id", msg.ID).Msg("Empty question, skipping")
		c.ack(ctx, msg.ID)
		return
	}

	targets := make([]models.ModelID, 0, len(event.Models))
	for _, id := range event.Models {
		targets = append(targets, models.ModelID(id))
	}

	result, err := c.orchestrator.RunTurn(ctx, orchestrator.TurnRequest{
		ConversationID: event.ConversationID,
		Message:        event.Question,
		Models:         targets,
		RunsPerModel:   event.NumRuns,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Turn failed")
		c.ack(ctx, msg.ID)
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Int64("conversation_id", result.Conversation.ID).
		Int("turn", result.Turn.TurnNumber).
		Int("results", len(result.Results)).
		Msg("Turn complete")

	if event.AutoScore {
		scoreResult, err := c.orchestrator.ScoreConversation(ctx, result.Conversation.ID)
		if err != nil {
			c.logger.Error().Err(err).Str("id", msg.ID).Msg("Scoring failed")
		} else {
			c.logger.Info().
				Str("id", msg.ID).
				Int("scored", scoreResult.Scored).
				Int("failed", scoreResult.Failed).
				Msg("Scoring complete")
		}
	}

	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}

// Package events publishes category lifecycle events to a Redis stream so
// downstream consumers can follow a run without polling the output files.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	EventTypeCategoryCompleted EventType = "CATEGORY_COMPLETED"
	EventTypeCategoryFailed    EventType = "CATEGORY_FAILED"
	EventTypeRunCompleted      EventType = "RUN_COMPLETED"
)

// Payload is the envelope written to the stream.
type Payload struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Category  string    `json:"category,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// RedisClient is the slice of go-redis used by the publisher.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type Publisher struct {
	client RedisClient
	stream string
	runID  string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream, runID string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		stream: stream,
		runID:  runID,
		logger: logger.With("component", "event_publisher"),
	}
}

// CategoryCompleted implements crawler.Notifier.
func (p *Publisher) CategoryCompleted(ctx context.Context, category string, rows int) {
	p.publish(ctx, Payload{
		EventType: EventTypeCategoryCompleted,
		Category:  category,
		Rows:      rows,
	})
}

// CategoryFailed implements crawler.Notifier.
func (p *Publisher) CategoryFailed(ctx context.Context, category string, err error) {
	p.publish(ctx, Payload{
		EventType: EventTypeCategoryFailed,
		Category:  category,
		Error:     err.Error(),
	})
}

// RunCompleted announces the final reconciled row count.
func (p *Publisher) RunCompleted(ctx context.Context, rows int) {
	p.publish(ctx, Payload{
		EventType: EventTypeRunCompleted,
		Rows:      rows,
	})
}

// publish is fire-and-forget: event delivery never disturbs extraction.
func (p *Publisher) publish(ctx context.Context, payload Payload) {
	payload.EventID = uuid.New().String()
	payload.Timestamp = time.Now().UTC()
	payload.RunID = p.runID

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("cannot marshal event", "type", payload.EventType, "error", err)
		return
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"payload": string(data)},
	}).Err()
	if err != nil {
		p.logger.Warn("cannot publish event", "type", payload.EventType, "error", err)
		return
	}
	p.logger.Debug("event published",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"category", payload.Category)
}

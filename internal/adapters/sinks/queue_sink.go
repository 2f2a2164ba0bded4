package sinks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reservenow/backend/internal/domain/entities"
)

// Publisher sends a message body to a named queue
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// QueueSink publishes each submission log to a message queue so downstream
// consumers (CRM import, analytics) can pick it up
type QueueSink struct {
	publisher Publisher
	queue     string
}

// NewQueueSink creates a queue sink
func NewQueueSink(publisher Publisher, queue string) *QueueSink {
	return &QueueSink{publisher: publisher, queue: queue}
}

// Record publishes entry
func (s *QueueSink) Record(ctx context.Context, entry *entities.SubmissionLog) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode submission log: %w", err)
	}
	return s.publisher.Publish(ctx, s.queue, body)
}

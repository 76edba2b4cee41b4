// Package events delivers committed ledger events to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/middleware"
)

const publishTimeout = 30 * time.Second

// message is the wire form of a LedgerEvent.
type message struct {
	Type        domain.EventType `json:"type"`
	AggregateID string           `json:"aggregate_id"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Payload     any              `json:"payload,omitempty"`
}

func encode(event domain.LedgerEvent) ([]byte, error) {
	return json.Marshal(message{
		Type:        event.Type,
		AggregateID: event.AggregateID,
		OccurredAt:  event.OccurredAt,
		Payload:     event.Payload,
	})
}

// PubSubPublisher publishes events to a Google Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubPublisher connects to projectID and verifies the topic exists.
func NewPubSubPublisher(ctx context.Context, projectID, topicName string) (*PubSubPublisher, error) {
	if projectID == "" || topicName == "" {
		return nil, fmt.Errorf("pubsub project id and topic are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("init pubsub client (project_id=%s): %w", projectID, err)
	}
	topic := client.Topic(topicName)
	ok, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check topic %q: %w", topicName, err)
	}
	if !ok {
		if topic, err = client.CreateTopic(ctx, topicName); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("create topic %q: %w", topicName, err)
		}
	}
	return &PubSubPublisher{client: client, topic: topic}, nil
}

var _ portssvc.EventPublisher = (*PubSubPublisher)(nil)

// Publish sends the event and logs the outcome asynchronously. Failures never reach the caller.
func (p *PubSubPublisher) Publish(ctx context.Context, event domain.LedgerEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)
	data, err := encode(event)
	if err != nil {
		logger.Error("Failed to encode ledger event", slog.String("type", string(event.Type)), slog.String("error", err.Error()))
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	result := p.topic.Publish(pubCtx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":         string(event.Type),
			"aggregate_id": event.AggregateID,
		},
	})
	go func() {
		defer cancel()
		id, err := result.Get(pubCtx)
		if err != nil {
			logger.Error("Failed to publish ledger event",
				slog.String("type", string(event.Type)),
				slog.String("aggregate_id", event.AggregateID),
				slog.String("error", err.Error()))
			return
		}
		logger.Debug("Ledger event published", slog.String("type", string(event.Type)), slog.String("message_id", id))
	}()
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

// LogPublisher writes events to the structured log. It is used when no topic is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger falls back to the request logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

var _ portssvc.EventPublisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(ctx context.Context, event domain.LedgerEvent) {
	logger := p.logger
	if logger == nil {
		logger = middleware.GetLoggerFromCtx(ctx)
	}
	logger.Info("Ledger event",
		slog.String("type", string(event.Type)),
		slog.String("aggregate_id", event.AggregateID),
		slog.Time("occurred_at", event.OccurredAt))
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []domain.LedgerEvent
}

func (r *Recorder) Publish(_ context.Context, event domain.LedgerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

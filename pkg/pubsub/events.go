package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const (
	envelopeVersion       = 1
	defaultPublishTimeout = 10 * time.Second
)

// EventTypeCartSubmitted is emitted after a cart submission commits.
const EventTypeCartSubmitted = "cart.submitted"

// Event is a domain event ready to be wrapped and published. Events sharing
// an OrderingKey are delivered in publish order.
type Event struct {
	Type        string
	AggregateID string
	OrderingKey string
	OccurredAt  time.Time
	Data        any
}

// Envelope is the stable JSON body written to the topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

type publisher interface {
	Publish(context.Context, *pubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// EventPublisher wraps events in an Envelope and publishes them synchronously.
type EventPublisher struct {
	pub     publisher
	timeout time.Duration
}

// NewEventPublisher adapts a Pub/Sub v2 publisher.
func NewEventPublisher(p *pubsub.Publisher) (*EventPublisher, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &EventPublisher{pub: &gcpPublisher{Publisher: p}, timeout: defaultPublishTimeout}, nil
}

// Publish marshals the event and waits for the server acknowledgement.
func (e *EventPublisher) Publish(ctx context.Context, event Event) error {
	if e == nil || e.pub == nil {
		return errors.New("event publisher not initialized")
	}
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	result := e.pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for event %s", event.Type)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publishing %s: %w", event.Type, err)
	}
	return nil
}

func buildMessage(event Event) (*pubsub.Message, error) {
	if event.Type == "" {
		return nil, errors.New("event type required")
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	envelope := Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		EventType:  event.Type,
		OccurredAt: occurredAt,
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return &pubsub.Message{
		Data:        body,
		OrderingKey: event.OrderingKey,
		Attributes: map[string]string{
			"event_id":     envelope.EventID,
			"event_type":   event.Type,
			"aggregate_id": event.AggregateID,
			"occurred_at":  occurredAt.Format(time.RFC3339Nano),
		},
	}, nil
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{
		PublishResult: p.Publisher.Publish(ctx, msg),
		publisher:     p.Publisher,
		orderingKey:   msg.OrderingKey,
	}
}

type gcpPublishResult struct {
	*pubsub.PublishResult
	publisher   *pubsub.Publisher
	orderingKey string
}

// Get waits for the ack. A failed ordered publish pauses its key until
// ResumePublish, so the key is resumed before the error is returned.
func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	id, err := r.PublishResult.Get(ctx)
	if err != nil && r.orderingKey != "" {
		r.publisher.ResumePublish(r.orderingKey)
	}
	return id, err
}

// Package events publishes job and worker lifecycle events to a message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// Event types. Each is published under <topic>.<type>.
const (
	TypeAdmitted  = "admitted"
	TypeCompleted = "completed"
	TypeFailed    = "failed"
	TypeWorker    = "worker"
)

// Event is a lifecycle notification
type Event struct {
	Type          string    `json:"type"`
	CorrelationID *uint64   `json:"correlation_id,omitempty"`
	WorkerID      string    `json:"worker_id,omitempty"`
	State         string    `json:"state,omitempty"`
	DurationMS    int64     `json:"duration_ms,omitempty"`
	ImageBytes    int       `json:"image_bytes,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// JobEvent builds an event about one job
func JobEvent(eventType string, correlationID uint64, workerID string) Event {
	return Event{Type: eventType, CorrelationID: &correlationID, WorkerID: workerID, Timestamp: time.Now()}
}

// WorkerEvent builds an event about a compute process state change
func WorkerEvent(workerID, state string) Event {
	return Event{Type: TypeWorker, WorkerID: workerID, State: state, Timestamp: time.Now()}
}

// Publisher delivers events. Publish must not block for long; callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New creates the publisher for the configured backend
func New(cfg *utils.Config) (Publisher, error) {
	switch cfg.EventsBackend {
	case "", "none":
		return NoopPublisher{}, nil
	case "nats":
		p, err := NewNATSPublisher(cfg.NATSURL, cfg.EventsTopic)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "mqtt":
		p := NewMQTTPublisher(cfg.MQTTBroker, cfg.EventsTopic, "imagegen-server")
		if err := p.Connect(context.Background()); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}

// NoopPublisher discards every event
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }

// Close implements Publisher
func (NoopPublisher) Close() error { return nil }

func encode(event Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Package notify announces successful feed refreshes to downstream
// consumers over Redis pub/sub or Kafka.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventRefreshed is the event name published after a successful refresh.
const EventRefreshed = "catalog.refreshed"

// Sink names accepted by New.
const (
	TypeNone  = "none"
	TypeRedis = "redis"
	TypeKafka = "kafka"
)

// Event describes a newly published document.
type Event struct {
	Event       string    `json:"event"`
	RunID       string    `json:"runId"`
	Items       int       `json:"items"`
	Bytes       int       `json:"bytes"`
	Schema      string    `json:"schema"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func (e Event) encode() ([]byte, error) {
	if e.Event == "" {
		e.Event = EventRefreshed
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", e.Event, err)
	}
	return data, nil
}

// Notifier delivers refresh events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
	Name() string
	Close() error
}

// Config selects and configures the sink.
type Config struct {
	Type         string
	RedisURL     string
	RedisChannel string
	KafkaBrokers []string
	KafkaTopic   string
}

// New builds the notifier named by cfg.Type.
func New(cfg Config) (Notifier, error) {
	switch cfg.Type {
	case TypeNone, "":
		return Noop{}, nil
	case TypeRedis:
		return NewRedisNotifier(cfg.RedisURL, cfg.RedisChannel)
	case TypeKafka:
		return NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unknown notifier type %q", cfg.Type)
	}
}

// Noop discards events.
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }
func (Noop) Name() string                        { return TypeNone }
func (Noop) Close() error                        { return nil }

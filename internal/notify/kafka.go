package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultKafkaTopic is used when no topic is configured.
const DefaultKafkaTopic = "catalog.refreshed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier writes events to a topic keyed by run id.
type KafkaNotifier struct {
	writer messageWriter
	topic  string
}

// NewKafkaNotifier creates a synchronous producer for topic.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka notifier requires at least one broker")
	}
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}
	return &KafkaNotifier{writer: w, topic: topic}, nil
}

// Notify writes e as one JSON message.
func (n *KafkaNotifier) Notify(ctx context.Context, e Event) error {
	data, err := e.encode()
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(e.RunID),
		Value: data,
		Time:  e.GeneratedAt,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to kafka topic %s: %w", n.topic, err)
	}
	return nil
}

func (n *KafkaNotifier) Name() string { return TypeKafka }

// Close flushes and closes the producer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

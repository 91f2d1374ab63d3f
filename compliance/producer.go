package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrSinkUnavailable wraps publish failures so callers can distinguish
// a sink outage from local errors. The outbox keeps the event either way.
var ErrSinkUnavailable = errors.New("compliance sink unavailable")

// Publisher is the transport to the regulatory sink.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// KafkaPublisher publishes compliance events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("compliance kafka publisher initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish writes one event keyed so events for the same order stay in
// partition order.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

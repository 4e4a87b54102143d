package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"restore/internal/observability"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a topic for the index worker.
type KafkaPublisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewKafkaPublisher creates an asynchronous writer for topic. Delivery
// failures are reported through the writer's completion callback.
func NewKafkaPublisher(brokers []string, topic string, metrics *observability.Metrics, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		metrics: metrics,
		logger:  logger.With().Str("component", "kafka_publisher").Str("topic", topic).Logger(),
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             p.completed,
	}
	return p
}

func newKafkaPublisherWithWriter(writer messageWriter, metrics *observability.Metrics, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  writer,
		metrics: metrics,
		logger:  logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// Publish encodes event and hands it to the writer. Events for the same
// product share a key so they stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event ProductEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.ProductEvent(string(event.Type), "failed")
		p.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to publish product event")
		return fmt.Errorf("failed to publish product event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) completed(messages []kafka.Message, err error) {
	for _, m := range messages {
		eventType := ""
		for _, h := range m.Headers {
			if h.Key == "event_type" {
				eventType = string(h.Value)
			}
		}
		if err != nil {
			p.metrics.ProductEvent(eventType, "failed")
			p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("product event delivery failed")
			continue
		}
		p.metrics.ProductEvent(eventType, "published")
	}
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

package events

import (
	"context"
	"encoding/json"
	"time"

	"restore/internal/observability"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageReader is the subset of *kafka.Reader used by Listener.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Listener consumes product events and applies them to the index.
type Listener struct {
	reader  messageReader
	indexer Indexer
	backoff time.Duration
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewListener creates a consumer-group reader for topic.
func NewListener(brokers []string, topic, groupID string, indexer Indexer, metrics *observability.Metrics, logger zerolog.Logger) *Listener {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return newListener(reader, indexer, metrics, logger)
}

func newListener(reader messageReader, indexer Indexer, metrics *observability.Metrics, logger zerolog.Logger) *Listener {
	return &Listener{
		reader:  reader,
		indexer: indexer,
		backoff: time.Second,
		metrics: metrics,
		logger:  logger.With().Str("component", "index_listener").Logger(),
	}
}

// Start reads until ctx is cancelled. Failed events are logged and skipped.
func (l *Listener) Start(ctx context.Context) {
	l.logger.Info().Msg("starting product event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("stopping product event listener")
			return
		default:
		}

		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error().Err(err).Msg("failed to read kafka message")
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.backoff):
			}
			continue
		}
		l.process(ctx, msg.Value)
	}
}

func (l *Listener) process(ctx context.Context, value []byte) {
	var event ProductEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error().Err(err).Msg("failed to decode product event")
		return
	}

	if err := Apply(ctx, l.indexer, event); err != nil {
		l.metrics.ProductEvent(string(event.Type), "failed")
		l.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Int64("product_id", event.ProductID).
			Msg("failed to apply product event")
		return
	}

	l.logger.Debug().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("product event applied")
}

// Close closes the underlying reader.
func (l *Listener) Close() error {
	return l.reader.Close()
}

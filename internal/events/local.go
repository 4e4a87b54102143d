package events

import (
	"context"
	"sync"
	"time"

	"restore/internal/observability"

	"github.com/rs/zerolog"
)

// LocalPublisher indexes events in-process on background goroutines.
type LocalPublisher struct {
	indexer Indexer
	timeout time.Duration
	metrics *observability.Metrics
	logger  zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewLocalPublisher creates a publisher that calls indexer directly, giving
// each event at most timeout to complete.
func NewLocalPublisher(indexer Indexer, timeout time.Duration, metrics *observability.Metrics, logger zerolog.Logger) *LocalPublisher {
	return &LocalPublisher{
		indexer: indexer,
		timeout: timeout,
		metrics: metrics,
		logger:  logger.With().Str("component", "local_publisher").Logger(),
	}
}

// Publish returns immediately. The request context is not used for indexing
// because the request may finish first.
func (p *LocalPublisher) Publish(_ context.Context, event ProductEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.metrics.ProductEvent(string(event.Type), "dropped")
		p.logger.Warn().Str("event_id", event.ID).Msg("publisher closed, event dropped")
		return nil
	}

	p.wg.Add(1)
	go p.handle(event)
	return nil
}

func (p *LocalPublisher) handle(event ProductEvent) {
	defer p.wg.Done()

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := Apply(ctx, p.indexer, event); err != nil {
		p.metrics.ProductEvent(string(event.Type), "failed")
		p.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Int64("product_id", event.ProductID).
			Msg("failed to apply product event to search index")
		return
	}

	p.metrics.ProductEvent(string(event.Type), "published")
}

// Close stops accepting events and waits for in-flight ones.
func (p *LocalPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

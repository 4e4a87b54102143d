package search

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ReindexAll upserts every product with bounded concurrency. Embedding calls
// are paced by the rate limiter. The first failure cancels the rest.
func (s *service) ReindexAll(ctx context.Context) (int, error) {
	if err := s.index.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	products, err := s.products.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list products: %w", err)
	}

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for _, p := range products {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			if err := s.index.Upsert(gctx, p); err != nil {
				return err
			}
			indexed.Add(1)
			return nil
		})
	}

	err = g.Wait()
	count := int(indexed.Load())
	if err != nil {
		s.logger.Error().Err(err).Int("indexed", count).Int("total", len(products)).Msg("reindex aborted")
		return count, fmt.Errorf("reindex failed after %d of %d products: %w", count, len(products), err)
	}

	s.logger.Info().Int("indexed", count).Msg("reindex completed")
	return count, nil
}

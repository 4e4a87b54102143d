package search

import (
	"context"
	"fmt"
	"strings"

	"restore/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Options tunes bulk reindexing.
type Options struct {
	RatePerSec  float64
	Concurrency int
}

type service struct {
	index    Index
	products ProductReader
	opts     Options
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewService creates a new search service.
func NewService(index Index, products ProductReader, opts Options, logger zerolog.Logger) Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	return &service{
		index:    index,
		products: products,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger.With().Str("service", "search").Logger(),
	}
}

// Search returns products ranked by similarity to query. Hits whose product
// no longer exists are skipped.
func (s *service) Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrInvalidSearchQuery
	}

	hits, err := s.index.Query(ctx, query, ClampTopK(topK))
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []model.SearchResult{}, nil
	}

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ProductID
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load search results: %w", err)
	}

	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		p, ok := byID[h.ProductID]
		if !ok {
			s.logger.Debug().Int64("product_id", h.ProductID).Msg("stale index entry skipped")
			continue
		}
		results = append(results, model.SearchResult{Product: p, Score: h.Score})
	}

	s.logger.Info().Str("query", query).Int("results", len(results)).Msg("search completed")
	return results, nil
}

// IndexProduct loads a product and upserts it. A product that no longer
// exists is removed from the index instead.
func (s *service) IndexProduct(ctx context.Context, productID int64) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return s.index.Delete(ctx, productID)
	}
	return s.index.Upsert(ctx, *product)
}

func (s *service) RemoveProduct(ctx context.Context, productID int64) error {
	return s.index.Delete(ctx, productID)
}

package coupon

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"restore/internal/model"

	"github.com/rs/zerolog"
)

// bookResolver resolves codes against a merged, read-only book.
type bookResolver struct {
	mu     sync.RWMutex
	book   *MemoryBook
	logger zerolog.Logger
}

// NewResolver loads every file concurrently and merges them in order, so
// later files override codes from earlier ones. Any load failure aborts.
func NewResolver(ctx context.Context, filePaths []string, loader Loader, logger zerolog.Logger) (Resolver, error) {
	logger = logger.With().Str("component", "coupon-resolver").Logger()

	type loadResult struct {
		book Book
		err  error
	}

	results := make([]loadResult, len(filePaths))
	var wg sync.WaitGroup
	for i, path := range filePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			book, err := loader.Load(ctx, path)
			results[index] = loadResult{book: book, err: err}
		}(i, path)
	}
	wg.Wait()

	merged := NewBook(0)
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load coupon file %s: %w", filePaths[i], result.err)
		}
		for _, c := range result.book.All() {
			merged.Put(c)
		}
	}

	logger.Info().
		Int("file_count", len(filePaths)).
		Int("total_coupons", merged.Size()).
		Msg("coupon resolver initialised")

	return &bookResolver{book: merged, logger: logger}, nil
}

// NewStaticResolver serves a fixed book.
func NewStaticResolver(book *MemoryBook, logger zerolog.Logger) Resolver {
	return &bookResolver{book: book, logger: logger.With().Str("component", "coupon-resolver").Logger()}
}

// Resolve returns the coupon for code, ignoring case.
func (r *bookResolver) Resolve(ctx context.Context, code string) (*model.Coupon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, model.ErrInvalidCoupon
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.book == nil {
		return nil, model.ErrInvalidCoupon
	}

	c, ok := r.book.Lookup(code)
	if !ok {
		r.logger.Debug().Str("coupon_code", code).Msg("coupon code not found")
		return nil, model.ErrInvalidCoupon
	}
	return &c, nil
}

// Close drops the book so it can be reclaimed.
func (r *bookResolver) Close() error {
	r.mu.Lock()
	r.book = nil
	r.mu.Unlock()
	return nil
}

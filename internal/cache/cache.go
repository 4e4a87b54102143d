// Package cache keeps a snapshot of the product catalogue so listings do
// not hit PostgreSQL on every request.
package cache

import (
	"context"

	"restore/internal/model"
)

// ProductCache stores the full product snapshot. Implementations treat
// backend failures as a miss.
//
// Every Invalidate advances a generation counter. A miss reports the
// generation it observed, and Set only stores a snapshot when the counter
// has not moved since, so a listing that read the database before a write
// cannot overwrite the invalidation with stale rows.
type ProductCache interface {
	Get(ctx context.Context) (products []model.Product, generation int64, ok bool)
	Set(ctx context.Context, products []model.Product, generation int64)
	Invalidate(ctx context.Context)
}

// NopCache never holds anything.
type NopCache struct{}

func (NopCache) Get(context.Context) ([]model.Product, int64, bool) { return nil, 0, false }
func (NopCache) Set(context.Context, []model.Product, int64)        {}
func (NopCache) Invalidate(context.Context)                         {}

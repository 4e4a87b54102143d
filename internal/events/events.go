// Package events carries product change notifications from admin writes to
// the vector index without blocking the write path.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a product change.
type EventType string

const (
	ProductUpserted EventType = "product.upserted"
	ProductDeleted  EventType = "product.deleted"
)

// ProductEvent is published after a catalog write has committed.
type ProductEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ProductID  int64     `json:"productId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewProductEvent stamps a new event with a fresh ID.
func NewProductEvent(eventType EventType, productID int64) ProductEvent {
	return ProductEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers product events. Publish must not block on delivery.
type Publisher interface {
	Publish(ctx context.Context, event ProductEvent) error
	Close() error
}

// Indexer applies product events to the search index.
type Indexer interface {
	IndexProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
}

// Apply routes an event to the matching Indexer call.
func Apply(ctx context.Context, indexer Indexer, event ProductEvent) error {
	switch event.Type {
	case ProductUpserted:
		return indexer.IndexProduct(ctx, event.ProductID)
	case ProductDeleted:
		return indexer.RemoveProduct(ctx, event.ProductID)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
}

// Nop discards events. Used when search is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, ProductEvent) error { return nil }
func (Nop) Close() error                                { return nil }

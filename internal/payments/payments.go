// Package payments keeps the external payment intent of a basket in step
// with the basket total.
package payments

import (
	"context"

	"restore/internal/model"
)

// Intents creates or updates the payment intent for a basket.
type Intents interface {
	// CreateOrUpdate creates an intent when the basket has none, otherwise
	// updates the amount of the existing one to the current basket total.
	CreateOrUpdate(ctx context.Context, basket *model.Basket) (*model.PaymentIntent, error)
}

// Disabled is used when no payment provider is configured.
type Disabled struct{}

// CreateOrUpdate always reports the provider as unavailable.
func (Disabled) CreateOrUpdate(context.Context, *model.Basket) (*model.PaymentIntent, error) {
	return nil, model.ErrServiceUnavailable
}

package service

import (
	"context"

	"restore/internal/catalog"
	"restore/internal/imagestore"
	"restore/internal/model"
)

// ProductService defines catalog browsing and administration.
type ProductService interface {
	// List runs the catalog pipeline over the full product snapshot.
	List(ctx context.Context, params catalog.Params) (catalog.Page, error)

	// GetByID retrieves a single product. Returns model.ErrProductNotFound when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Filters returns the distinct brands and types in the catalog.
	Filters(ctx context.Context) (model.ProductFilters, error)

	// Create validates input, stores the optional image and inserts the product.
	Create(ctx context.Context, input model.ProductInput, image *imagestore.Upload) (*model.Product, error)

	// Update overwrites a product, replacing its image when one is supplied.
	Update(ctx context.Context, input model.ProductInput, image *imagestore.Upload) (*model.Product, error)

	// Delete removes a product and its image.
	Delete(ctx context.Context, id int64) error
}

// BasketService defines guest basket operations. The token is the only
// credential for a basket.
type BasketService interface {
	// Get loads the basket for token. Returns model.ErrBasketNotFound when absent.
	Get(ctx context.Context, token string) (*model.Basket, error)

	// AddItem adds quantity of a product, creating a basket with a fresh
	// token when none exists. created reports whether a basket was minted.
	AddItem(ctx context.Context, token string, productID int64, quantity int) (basket *model.Basket, created bool, err error)

	// RemoveItem decrements a line, dropping it at zero. Removing a product
	// that is not in the basket succeeds without a write.
	RemoveItem(ctx context.Context, token string, productID int64, quantity int) (*model.Basket, error)

	// ApplyCoupon attaches a coupon and resyncs the payment intent amount.
	// Neither changes unless both succeed.
	ApplyCoupon(ctx context.Context, token, code string) (*model.Basket, error)

	// RemoveCoupon detaches the coupon with the same all-or-nothing rule.
	RemoveCoupon(ctx context.Context, token string) (*model.Basket, error)

	// CreateOrUpdatePaymentIntent syncs the payment intent with the basket total.
	CreateOrUpdatePaymentIntent(ctx context.Context, token string) (*model.Basket, error)
}

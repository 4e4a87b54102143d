// Package coupon loads discount coupons from gzipped CSV files, locally or
// from S3, and resolves codes entered by shoppers.
package coupon

import (
	"context"

	"restore/internal/model"
)

// Resolver looks up coupon codes.
type Resolver interface {
	// Resolve returns the coupon for code, ignoring case.
	// Unknown codes yield model.ErrInvalidCoupon.
	Resolve(ctx context.Context, code string) (*model.Coupon, error)

	// Close releases the loaded coupon books.
	Close() error
}

// Book is a read-only set of coupons keyed by normalized code.
type Book interface {
	// Lookup finds a coupon by code, ignoring case.
	Lookup(code string) (model.Coupon, bool)

	// Size returns the number of coupons in the book.
	Size() int

	// All returns every coupon in the book.
	All() []model.Coupon
}

// Loader defines the interface for loading coupon files.
type Loader interface {
	// Load reads a gzipped coupon file and returns its Book.
	Load(ctx context.Context, filePath string) (Book, error)
}

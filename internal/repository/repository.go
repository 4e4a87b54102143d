package repository

import (
	"context"
	"errors"

	"restore/internal/model"

	"github.com/jackc/pgx/v5"
)

// ErrVersionConflict is returned by SaveIfVersion when the stored basket
// was changed after it was read.
var ErrVersionConflict = errors.New("basket version conflict")

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// ListAll retrieves every product ordered by ID.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves the products matching ids, ordered by ID.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// Create inserts a product and fills in its generated ID and timestamps.
	Create(ctx context.Context, product *model.Product) error

	// Update overwrites a product. Returns model.ErrProductNotFound when absent.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product. Returns model.ErrProductNotFound when absent.
	Delete(ctx context.Context, id int64) error
}

// BasketRepository defines the interface for basket data access operations.
type BasketRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByToken loads a basket with its items and their products.
	// Returns nil when no basket has the token.
	GetByToken(ctx context.Context, token string) (*model.Basket, error)

	// GetByTokenForUpdate is GetByToken inside tx, locking the basket row
	// until tx commits or rolls back.
	GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*model.Basket, error)

	// Create inserts a new basket and its items within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, basket *model.Basket) error

	// SaveIfVersion writes the basket and replaces its items when the stored
	// version still equals expected. On success basket.Version is advanced.
	SaveIfVersion(ctx context.Context, tx pgx.Tx, basket *model.Basket, expected int64) error
}

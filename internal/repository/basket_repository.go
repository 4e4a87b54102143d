package repository

import (
	"context"
	"errors"
	"fmt"

	"restore/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// basketRepository implements the BasketRepository interface using PostgreSQL.
type basketRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBasketRepository creates a new PostgreSQL-backed basket repository.
func NewBasketRepository(pool *pgxpool.Pool, logger zerolog.Logger) BasketRepository {
	return &basketRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "basket").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *basketRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// querier is the read surface shared by the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// GetByToken loads a basket with its items in insertion order.
func (r *basketRepository) GetByToken(ctx context.Context, token string) (*model.Basket, error) {
	return r.getByToken(ctx, r.pool, token, false)
}

// GetByTokenForUpdate loads a basket inside tx and holds its row lock until
// tx ends.
func (r *basketRepository) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*model.Basket, error) {
	return r.getByToken(ctx, tx, token, true)
}

func (r *basketRepository) getByToken(ctx context.Context, q querier, token string, forUpdate bool) (*model.Basket, error) {
	basketQuery := `
		SELECT id, token, coupon_code, coupon_name, coupon_amount_off, coupon_percent_off,
		       payment_intent_id, client_secret, version, created_at, updated_at
		FROM baskets
		WHERE token = $1
	`
	if forUpdate {
		basketQuery += ` FOR UPDATE`
	}

	var (
		basket     model.Basket
		couponCode *string
		couponName *string
		amountOff  int64
		percentOff int
	)
	err := q.QueryRow(ctx, basketQuery, token).Scan(
		&basket.ID,
		&basket.Token,
		&couponCode,
		&couponName,
		&amountOff,
		&percentOff,
		&basket.PaymentIntentID,
		&basket.ClientSecret,
		&basket.Version,
		&basket.CreatedAt,
		&basket.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Msg("basket not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query basket")
		return nil, fmt.Errorf("failed to query basket: %w", err)
	}

	if couponCode != nil {
		basket.Coupon = &model.Coupon{
			Code:       *couponCode,
			AmountOff:  amountOff,
			PercentOff: percentOff,
		}
		if couponName != nil {
			basket.Coupon.Name = *couponName
		}
	}

	itemsQuery := `
		SELECT bi.quantity, p.id, p.name, p.description, p.price, p.picture_url, p.type, p.brand,
		       p.quantity_in_stock, p.public_id, p.created_at, p.updated_at
		FROM basket_items bi
		JOIN products p ON p.id = bi.product_id
		WHERE bi.basket_id = $1
		ORDER BY bi.position
	`

	rows, err := q.Query(ctx, itemsQuery, basket.ID)
	if err != nil {
		r.logger.Error().Err(err).Int64("basket_id", basket.ID).Msg("failed to query basket items")
		return nil, fmt.Errorf("failed to query basket items: %w", err)
	}
	defer rows.Close()

	basket.Items = []model.BasketItem{}
	for rows.Next() {
		var (
			item model.BasketItem
			p    = &item.Product
		)
		err := rows.Scan(
			&item.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.PictureURL, &p.Type, &p.Brand,
			&p.QuantityInStock, &p.PublicID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan basket item row")
			return nil, fmt.Errorf("failed to scan basket item: %w", err)
		}
		item.ProductID = p.ID
		basket.Items = append(basket.Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating basket item rows")
		return nil, fmt.Errorf("error iterating basket items: %w", err)
	}

	return &basket, nil
}

// Create inserts a new basket and its items within the provided transaction.
func (r *basketRepository) Create(ctx context.Context, tx pgx.Tx, basket *model.Basket) error {
	query := `
		INSERT INTO baskets (token, coupon_code, coupon_name, coupon_amount_off, coupon_percent_off,
		                     payment_intent_id, client_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, created_at, updated_at
	`

	code, name, amountOff, percentOff := couponColumns(basket.Coupon)
	err := tx.QueryRow(ctx, query,
		basket.Token,
		code,
		name,
		amountOff,
		percentOff,
		basket.PaymentIntentID,
		basket.ClientSecret,
	).Scan(&basket.ID, &basket.Version, &basket.CreatedAt, &basket.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create basket")
		return fmt.Errorf("failed to create basket: %w", err)
	}

	if err := r.insertItems(ctx, tx, basket); err != nil {
		return err
	}

	r.logger.Debug().Int64("basket_id", basket.ID).Msg("basket created")
	return nil
}

// SaveIfVersion updates the basket only when its stored version equals expected.
func (r *basketRepository) SaveIfVersion(ctx context.Context, tx pgx.Tx, basket *model.Basket, expected int64) error {
	query := `
		UPDATE baskets
		SET coupon_code = $3, coupon_name = $4, coupon_amount_off = $5, coupon_percent_off = $6,
		    payment_intent_id = $7, client_secret = $8, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	code, name, amountOff, percentOff := couponColumns(basket.Coupon)
	err := tx.QueryRow(ctx, query,
		basket.ID,
		expected,
		code,
		name,
		amountOff,
		percentOff,
		basket.PaymentIntentID,
		basket.ClientSecret,
	).Scan(&basket.Version, &basket.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Int64("basket_id", basket.ID).
				Int64("expected_version", expected).
				Msg("basket version conflict")
			return ErrVersionConflict
		}
		r.logger.Error().Err(err).Int64("basket_id", basket.ID).Msg("failed to update basket")
		return fmt.Errorf("failed to update basket: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM basket_items WHERE basket_id = $1`, basket.ID); err != nil {
		r.logger.Error().Err(err).Int64("basket_id", basket.ID).Msg("failed to clear basket items")
		return fmt.Errorf("failed to clear basket items: %w", err)
	}

	return r.insertItems(ctx, tx, basket)
}

// insertItems writes all basket lines in a single batch.
func (r *basketRepository) insertItems(ctx context.Context, tx pgx.Tx, basket *model.Basket) error {
	if len(basket.Items) == 0 {
		return nil
	}

	query := `
		INSERT INTO basket_items (basket_id, product_id, quantity, position)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	for i, item := range basket.Items {
		batch.Queue(query, basket.ID, item.ProductID, item.Quantity, i)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(basket.Items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Int64("basket_id", basket.ID).
				Int64("product_id", basket.Items[i].ProductID).
				Msg("failed to insert basket item")
			return fmt.Errorf("failed to insert basket item: %w", err)
		}
	}

	return nil
}

func couponColumns(c *model.Coupon) (code, name *string, amountOff int64, percentOff int) {
	if c == nil {
		return nil, nil, 0, 0
	}
	return &c.Code, &c.Name, c.AmountOff, c.PercentOff
}

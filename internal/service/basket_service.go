package service

import (
	"context"
	"errors"
	"fmt"

	"restore/internal/coupon"
	"restore/internal/model"
	"restore/internal/observability"
	"restore/internal/payments"
	"restore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mutation changes a loaded basket in memory. It reports whether anything
// needs to be written.
type mutation func(ctx context.Context, basket *model.Basket) (changed bool, err error)

// basketService implements BasketService.
type basketService struct {
	basketRepo  repository.BasketRepository
	productRepo repository.ProductRepository
	coupons     coupon.Resolver
	payments    payments.Intents
	maxRetries  int
	metrics     *observability.Metrics
	logger      zerolog.Logger
}

// NewBasketService creates a new basket service. A write that loses a
// version race is retried up to maxRetries times.
func NewBasketService(
	basketRepo repository.BasketRepository,
	productRepo repository.ProductRepository,
	coupons coupon.Resolver,
	intents payments.Intents,
	maxRetries int,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) BasketService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &basketService{
		basketRepo:  basketRepo,
		productRepo: productRepo,
		coupons:     coupons,
		payments:    intents,
		maxRetries:  maxRetries,
		metrics:     metrics,
		logger:      logger.With().Str("service", "basket").Logger(),
	}
}

// Get loads the basket for token.
func (s *basketService) Get(ctx context.Context, token string) (*model.Basket, error) {
	basket, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if basket == nil {
		return nil, model.ErrBasketNotFound
	}
	return basket, nil
}

// AddItem adds quantity of a product, creating the basket when needed.
func (s *basketService) AddItem(ctx context.Context, token string, productID int64, quantity int) (*model.Basket, bool, error) {
	if quantity <= 0 {
		return nil, false, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to get product")
		return nil, false, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, false, model.ErrProductNotFound
	}

	return s.write(ctx, token, true, func(_ context.Context, basket *model.Basket) (bool, error) {
		return true, basket.AddItem(*product, quantity)
	})
}

// RemoveItem decrements a line, dropping it at zero.
func (s *basketService) RemoveItem(ctx context.Context, token string, productID int64, quantity int) (*model.Basket, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	basket, _, err := s.write(ctx, token, false, func(_ context.Context, basket *model.Basket) (bool, error) {
		if basket.FindItem(productID) == nil {
			return false, nil
		}
		return true, basket.RemoveItem(productID, quantity)
	})
	return basket, err
}

// ApplyCoupon attaches a coupon and resyncs the payment intent amount.
func (s *basketService) ApplyCoupon(ctx context.Context, token, code string) (*model.Basket, error) {
	basket, err := s.writeLocked(ctx, token, func(ctx context.Context, basket *model.Basket) (bool, error) {
		if !basket.HasPaymentIntent() {
			return false, model.ErrPaymentIntentMissing
		}

		c, err := s.coupons.Resolve(ctx, code)
		if err != nil {
			return false, err
		}

		basket.Coupon = c
		return true, s.syncPayment(ctx, basket)
	})
	if err == nil {
		s.logger.Info().Str("coupon_code", basket.Coupon.Code).Msg("coupon applied")
	}
	return basket, err
}

// RemoveCoupon detaches the coupon and resyncs the payment intent amount.
func (s *basketService) RemoveCoupon(ctx context.Context, token string) (*model.Basket, error) {
	basket, err := s.writeLocked(ctx, token, func(ctx context.Context, basket *model.Basket) (bool, error) {
		if basket.Coupon == nil {
			return false, model.ErrCouponNotApplied
		}
		if !basket.HasPaymentIntent() {
			return false, model.ErrPaymentIntentMissing
		}

		basket.Coupon = nil
		return true, s.syncPayment(ctx, basket)
	})
	return basket, err
}

// CreateOrUpdatePaymentIntent syncs the payment intent with the basket total.
func (s *basketService) CreateOrUpdatePaymentIntent(ctx context.Context, token string) (*model.Basket, error) {
	basket, err := s.writeLocked(ctx, token, func(ctx context.Context, basket *model.Basket) (bool, error) {
		if len(basket.Items) == 0 {
			return false, model.ErrEmptyBasket
		}
		return true, s.syncPayment(ctx, basket)
	})
	return basket, err
}

// syncPayment pushes the basket total to the payment provider and records
// the returned intent on the basket.
func (s *basketService) syncPayment(ctx context.Context, basket *model.Basket) error {
	intent, err := s.payments.CreateOrUpdate(ctx, basket)
	if err != nil {
		if errors.Is(err, model.ErrServiceUnavailable) {
			return err
		}
		s.logger.Error().Err(err).Int64("basket_id", basket.ID).Msg("payment intent sync failed")
		return fmt.Errorf("%w: %v", model.ErrPaymentSync, err)
	}

	basket.PaymentIntentID = &intent.ID
	basket.ClientSecret = &intent.ClientSecret
	return nil
}

func (s *basketService) load(ctx context.Context, token string) (*model.Basket, error) {
	if token == "" {
		return nil, nil
	}

	basket, err := s.basketRepo.GetByToken(ctx, token)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load basket")
		return nil, fmt.Errorf("failed to load basket: %w", err)
	}
	return basket, nil
}

// writeLocked applies a change that talks to the payment provider. The
// basket row stays locked from load to commit, so the save cannot lose a
// version race after the provider was updated. When the save or commit still
// fails, the intent is pushed back to the committed basket total.
func (s *basketService) writeLocked(ctx context.Context, token string, change mutation) (*model.Basket, error) {
	if token == "" {
		return nil, model.ErrBasketNotFound
	}

	basket, synced, err := s.lockedAttempt(ctx, token, change)
	if err != nil && synced {
		s.restorePayment(context.WithoutCancel(ctx), token)
	}
	return basket, err
}

func (s *basketService) lockedAttempt(ctx context.Context, token string, change mutation) (basket *model.Basket, synced bool, err error) {
	tx, err := s.basketRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, false, fmt.Errorf("failed to update basket: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	basket, err = s.basketRepo.GetByTokenForUpdate(ctx, tx, token)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to lock basket")
		return nil, false, fmt.Errorf("failed to load basket: %w", err)
	}
	if basket == nil {
		return nil, false, model.ErrBasketNotFound
	}
	expected := basket.Version

	changed, err := change(ctx, basket)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return basket, false, nil
	}

	if err = s.basketRepo.SaveIfVersion(ctx, tx, basket, expected); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.metrics.BasketConflict()
			s.logger.Warn().Str("basket_token", token).Msg("locked basket changed underneath")
			return nil, true, model.ErrBasketConflict
		}
		s.logger.Error().Err(err).Str("basket_token", token).Msg("failed to save basket")
		return nil, true, fmt.Errorf("failed to save basket: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return nil, true, fmt.Errorf("failed to update basket: %w", err)
	}

	return basket, true, nil
}

// restorePayment pushes the committed basket total back to the payment
// provider after a synced change failed to persist.
func (s *basketService) restorePayment(ctx context.Context, token string) {
	committed, err := s.load(ctx, token)
	if err != nil {
		s.logger.Error().Err(err).Str("basket_token", token).Msg("cannot restore payment intent, basket unreadable")
		return
	}
	if committed == nil || !committed.HasPaymentIntent() {
		s.logger.Warn().Str("basket_token", token).Msg("unsaved payment intent left without a basket reference")
		return
	}

	if _, err := s.payments.CreateOrUpdate(ctx, committed); err != nil {
		s.logger.Error().Err(err).
			Str("payment_intent_id", *committed.PaymentIntentID).
			Msg("failed to restore payment intent amount")
		return
	}
	s.logger.Info().
		Str("payment_intent_id", *committed.PaymentIntentID).
		Int64("amount", committed.Total()).
		Msg("payment intent restored to committed basket")
}

// write applies change to the basket for token and persists it, retrying
// when another writer saved the basket first.
func (s *basketService) write(ctx context.Context, token string, create bool, change mutation) (*model.Basket, bool, error) {
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		basket, created, err := s.attempt(ctx, token, create, change)
		if !errors.Is(err, repository.ErrVersionConflict) {
			return basket, created, err
		}

		s.metrics.BasketConflict()
		s.logger.Debug().Int("attempt", attempt+1).Msg("basket version conflict, retrying")
	}

	s.logger.Warn().Int("retries", s.maxRetries).Msg("basket write abandoned after repeated conflicts")
	return nil, false, model.ErrBasketConflict
}

func (s *basketService) attempt(ctx context.Context, token string, create bool, change mutation) (basket *model.Basket, created bool, err error) {
	basket, err = s.load(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if basket == nil {
		if !create {
			return nil, false, model.ErrBasketNotFound
		}
		basket = &model.Basket{Token: uuid.NewString(), Items: []model.BasketItem{}}
		created = true
	}
	expected := basket.Version

	tx, err := s.basketRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, false, fmt.Errorf("failed to update basket: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	changed, err := change(ctx, basket)
	if err != nil {
		return nil, false, err
	}
	if !changed && !created {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return basket, false, nil
	}

	if created {
		err = s.basketRepo.Create(ctx, tx, basket)
	} else {
		err = s.basketRepo.SaveIfVersion(ctx, tx, basket, expected)
	}
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, false, err
		}
		s.logger.Error().Err(err).Str("basket_token", basket.Token).Msg("failed to save basket")
		return nil, false, fmt.Errorf("failed to save basket: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return nil, false, fmt.Errorf("failed to update basket: %w", err)
	}

	return basket, created, nil
}

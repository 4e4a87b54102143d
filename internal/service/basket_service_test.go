package service

import (
	"context"
	"errors"
	"testing"

	"restore/internal/model"
	"restore/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type basketDeps struct {
	baskets  *MockBasketRepository
	products *MockProductRepository
	coupons  *MockResolver
	intents  *MockIntents
	svc      BasketService
}

func newBasketDeps(maxRetries int) basketDeps {
	d := basketDeps{
		baskets:  new(MockBasketRepository),
		products: new(MockProductRepository),
		coupons:  new(MockResolver),
		intents:  new(MockIntents),
	}
	d.svc = NewBasketService(d.baskets, d.products, d.coupons, d.intents, maxRetries, nil, zerolog.Nop())
	return d
}

var gloves = model.Product{ID: 7, Name: "Gloves", Price: 1999, Brand: "Nike", Type: "Sports & Outdoors"}

func basketWith(token string, version int64, qty int) *model.Basket {
	b := &model.Basket{ID: 1, Token: token, Version: version, Items: []model.BasketItem{}}
	if qty > 0 {
		b.Items = append(b.Items, model.BasketItem{ProductID: gloves.ID, Quantity: qty, Product: gloves})
	}
	return b
}

func withIntent(b *model.Basket) *model.Basket {
	id, secret := "pi_1", "pi_1_secret"
	b.PaymentIntentID = &id
	b.ClientSecret = &secret
	return b
}

func TestBasketService_AddItem_CreatesThenMerges(t *testing.T) {
	ctx := context.Background()
	d := newBasketDeps(3)
	d.products.On("GetByID", ctx, gloves.ID).Return(&gloves, nil)

	tx1 := newMockTx()
	d.baskets.On("BeginTx", ctx).Return(tx1, nil).Once()
	d.baskets.On("Create", ctx, tx1, mock.AnythingOfType("*model.Basket")).Run(func(args mock.Arguments) {
		b := args.Get(2).(*model.Basket)
		b.ID = 1
		b.Version = 1
	}).Return(nil)

	basket, created, err := d.svc.AddItem(ctx, "", gloves.ID, 2)

	require.NoError(t, err)
	assert.True(t, created)
	require.NotEmpty(t, basket.Token)
	assert.Equal(t, int64(3998), basket.Subtotal())
	assert.True(t, tx1.committed)

	// Second request presents the minted token.
	token := basket.Token
	tx2 := newMockTx()
	d.baskets.On("GetByToken", ctx, token).Return(basketWith(token, 1, 2), nil)
	d.baskets.On("BeginTx", ctx).Return(tx2, nil).Once()
	d.baskets.On("SaveIfVersion", ctx, tx2, mock.AnythingOfType("*model.Basket"), int64(1)).Return(nil)

	basket, created, err = d.svc.AddItem(ctx, token, gloves.ID, 1)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, token, basket.Token)
	require.Len(t, basket.Items, 1)
	assert.Equal(t, 3, basket.Items[0].Quantity)
	assert.Equal(t, int64(5997), basket.Subtotal())
	assert.Equal(t, int64(6497), basket.Total())
	assert.True(t, tx2.committed)
}

func TestBasketService_AddItem_UnknownTokenMintsNewBasket(t *testing.T) {
	ctx := context.Background()
	d := newBasketDeps(3)
	d.products.On("GetByID", ctx, gloves.ID).Return(&gloves, nil)
	d.baskets.On("GetByToken", ctx, "stale").Return(nil, nil)
	d.baskets.On("BeginTx", ctx).Return(newMockTx(), nil)
	d.baskets.On("Create", ctx, mock.Anything, mock.AnythingOfType("*model.Basket")).Return(nil)

	basket, created, err := d.svc.AddItem(ctx, "stale", gloves.ID, 1)

	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "stale", basket.Token)
}

func TestBasketService_AddItem_Rejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		quantity    int
		product     *model.Product
		productErr  error
		expectedErr error
	}{
		{name: "Zero quantity", quantity: 0, expectedErr: model.ErrInvalidQuantity},
		{name: "Negative quantity", quantity: -2, expectedErr: model.ErrInvalidQuantity},
		{name: "Unknown product", quantity: 1, expectedErr: model.ErrProductNotFound},
		{name: "Product lookup failure", quantity: 1, productErr: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newBasketDeps(3)
			if tt.quantity > 0 {
				d.products.On("GetByID", ctx, gloves.ID).Return(tt.product, tt.productErr)
			}

			_, _, err := d.svc.AddItem(ctx, "tok", gloves.ID, tt.quantity)

			require.Error(t, err)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			d.baskets.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestBasketService_WriteRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	d := newBasketDeps(3)
	d.products.On("GetByID", ctx, gloves.ID).Return(&gloves, nil)

	// Each attempt reloads the basket; the second read sees the other writer's version.
	d.baskets.On("GetByToken", ctx, "tok").Return(basketWith("tok", 1, 1), nil).Once()
	d.baskets.On("GetByToken", ctx, "tok").Return(basketWith("tok", 2, 2), nil).Once()

	tx1, tx2 := newMockTx(), newMockTx()
	d.baskets.On("BeginTx", ctx).Return(tx1, nil).Once()
	d.baskets.On("BeginTx", ctx).Return(tx2, nil).Once()
	d.baskets.On("SaveIfVersion", ctx, tx1, mock.Anything, int64(1)).Return(repository.ErrVersionConflict)
	d.baskets.On("SaveIfVersion", ctx, tx2, mock.Anything, int64(2)).Return(nil)

	basket, _, err := d.svc.AddItem(ctx, "tok", gloves.ID, 1)

	require.NoError(t, err)
	assert.Equal(t, 3, basket.Items[0].Quantity)
	assert.True(t, tx1.rolledBack)
	assert.False(t, tx1.committed)
	assert.True(t, tx2.committed)
}

func TestBasketService_WriteGivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	d := newBasketDeps(2)
	d.products.On("GetByID", ctx, gloves.ID).Return(&gloves, nil)
	for i := 0; i < 3; i++ {
		d.baskets.On("GetByToken", ctx, "tok").Return(basketWith("tok", 1, 1), nil).Once()
	}
	d.baskets.On("BeginTx", ctx).Return(newMockTx(), nil)
	d.baskets.On("SaveIfVersion", ctx, mock.Anything, mock.Anything, int64(1)).Return(repository.ErrVersionConflict)

	_, _, err := d.svc.AddItem(ctx, "tok", gloves.ID, 1)

	assert.ErrorIs(t, err, model.ErrBasketConflict)
	d.baskets.AssertNumberOfCalls(t, "SaveIfVersion", 3)
}

func TestBasketService_RemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown basket", func(t *testing.T) {
		d := newBasketDeps(3)
		d.baskets.On("GetByToken", ctx, "tok").Return(nil, nil)

		_, err := d.svc.RemoveItem(ctx, "tok", gloves.ID, 1)

		assert.ErrorIs(t, err, model.ErrBasketNotFound)
	})

	t.Run("Missing token", func(t *testing.T) {
		d := newBasketDeps(3)

		_, err := d.svc.RemoveItem(ctx, "", gloves.ID, 1)

		assert.ErrorIs(t, err, model.ErrBasketNotFound)
	})

	t.Run("Invalid quantity", func(t *testing.T) {
		d := newBasketDeps(3)

		_, err := d.svc.RemoveItem(ctx, "tok", gloves.ID, 0)

		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})

	t.Run("Missing line is a no-op", func(t *testing.T) {
		d := newBasketDeps(3)
		tx := newMockTx()
		d.baskets.On("GetByToken", ctx, "tok").Return(basketWith("tok", 1, 2), nil)
		d.baskets.On("BeginTx", ctx).Return(tx, nil)

		basket, err := d.svc.RemoveItem(ctx, "tok", 999, 1)

		require.NoError(t, err)
		assert.Len(t, basket.Items, 1)
		assert.True(t, tx.rolledBack)
		d.baskets.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Removing everything drops the line", func(t *testing.T) {
		d := newBasketDeps(3)
		d.baskets.On("GetByToken", ctx, "tok").Return(basketWith("tok", 4, 2), nil)
		d.baskets.On("BeginTx", ctx).Return(newMockTx(), nil)
		d.baskets.On("SaveIfVersion", ctx, mock.Anything, mock.MatchedBy(func(b *model.Basket) bool {
			return len(b.Items) == 0
		}), int64(4)).Return(nil)

		basket, err := d.svc.RemoveItem(ctx, "tok", gloves.ID, 5)

		require.NoError(t, err)
		assert.Empty(t, basket.Items)
		assert.Equal(t, int64(0), basket.DeliveryFee())
	})
}

// lockBasket expects one locked load of basket inside tx.
func (d basketDeps) lockBasket(ctx context.Context, tx *MockTx, token string, basket *model.Basket) {
	d.baskets.On("BeginTx", ctx).Return(tx, nil).Once()
	d.baskets.On("GetByTokenForUpdate", ctx, tx, token).Return(basket, nil).Once()
}

func TestBasketService_ApplyCoupon(t *testing.T) {
	ctx := context.Background()
	tenPercent := &model.Coupon{Code: "SAVE10", Name: "Ten percent off", PercentOff: 10}

	t.Run("Success", func(t *testing.T) {
		d := newBasketDeps(3)
		tx := newMockTx()
		d.lockBasket(ctx, tx, "tok", withIntent(basketWith("tok", 1, 3)))
		d.coupons.On("Resolve", ctx, "save10").Return(tenPercent, nil)
		d.intents.On("CreateOrUpdate", ctx, mock.MatchedBy(func(b *model.Basket) bool {
			// 5997 - 599 discount + 500 delivery
			return b.Coupon != nil && b.Total() == 5898
		})).Return(&model.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_v2"}, nil)
		d.baskets.On("SaveIfVersion", ctx, tx, mock.Anything, int64(1)).Return(nil)

		basket, err := d.svc.ApplyCoupon(ctx, "tok", "save10")

		require.NoError(t, err)
		require.NotNil(t, basket.Coupon)
		assert.Equal(t, "SAVE10", basket.Coupon.Code)
		assert.Equal(t, "pi_1_secret_v2", *basket.ClientSecret)
		assert.True(t, tx.committed)
		d.baskets.AssertNotCalled(t, "GetByToken", mock.Anything, mock.Anything)
	})

	t.Run("Payment failure leaves coupon uncommitted", func(t *testing.T) {
		d := newBasketDeps(3)
		tx := newMockTx()
		d.lockBasket(ctx, tx, "tok", withIntent(basketWith("tok", 1, 3)))
		d.coupons.On("Resolve", ctx, "SAVE10").Return(tenPercent, nil)
		d.intents.On("CreateOrUpdate", ctx, mock.Anything).Return(nil, errors.New("card_error"))

		_, err := d.svc.ApplyCoupon(ctx, "tok", "SAVE10")

		assert.ErrorIs(t, err, model.ErrPaymentSync)
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
		d.baskets.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		d.intents.AssertNumberOfCalls(t, "CreateOrUpdate", 1)
	})

	t.Run("Failed save restores the committed total", func(t *testing.T) {
		d := newBasketDeps(0)
		tx := newMockTx()
		d.lockBasket(ctx, tx, "tok", withIntent(basketWith("tok", 1, 3)))
		d.coupons.On("Resolve", ctx, "SAVE10").Return(tenPercent, nil)
		d.baskets.On("SaveIfVersion", ctx, tx, mock.Anything, int64(1)).Return(repository.ErrVersionConflict)
		d.baskets.On("GetByToken", mock.Anything, "tok").Return(withIntent(basketWith("tok", 1, 3)), nil)

		var pushed []int64
		d.intents.On("CreateOrUpdate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			pushed = append(pushed, args.Get(1).(*model.Basket).Total())
		}).Return(&model.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)

		_, err := d.svc.ApplyCoupon(ctx, "tok", "SAVE10")

		assert.ErrorIs(t, err, model.ErrBasketConflict)
		assert.False(t, tx.committed)
		// Discounted total first, then back to the committed basket without a coupon.
		assert.Equal(t, []int64{5898, 6497}, pushed)
	})

	t.Run("Failed commit restores the committed total", func(t *testing.T) {
		d := newBasketDeps(3)
		tx := new(MockTx)
		tx.On("Commit", ctx).Return(errors.New("connection reset"))
		tx.On("Rollback", ctx).Return(nil).Maybe()
		d.lockBasket(ctx, tx, "tok", withIntent(basketWith("tok", 1, 3)))
		d.coupons.On("Resolve", ctx, "SAVE10").Return(tenPercent, nil)
		d.baskets.On("SaveIfVersion", ctx, tx, mock.Anything, int64(1)).Return(nil)
		d.baskets.On("GetByToken", mock.Anything, "tok").Return(withIntent(basketWith("tok", 1, 3)), nil)
		d.intents.On("CreateOrUpdate", ctx, mock.MatchedBy(func(b *model.Basket) bool {
			return b.Coupon != nil
		})).Return(&model.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()
		d.intents.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(b *model.Basket) bool {
			return b.Coupon == nil && b.Total() == 6497
		})).Return(&model.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()

		_, err := d.svc.ApplyCoupon(ctx, "tok", "SAVE10")

		require.Error(t, err)
		d.intents.AssertExpectations(t)
	})

	t.Run("Invalid coupon", func(t *testing.T) {
		d := newBasketDeps(3)
		d.lockBasket(ctx, newMockTx(), "tok", withIntent(basketWith("tok", 1, 3)))
		d.coupons.On("Resolve", ctx, "NOPE").Return(nil, model.ErrInvalidCoupon)

		_, err := d.svc.ApplyCoupon(ctx, "tok", "NOPE")

		assert.ErrorIs(t, err, model.ErrInvalidCoupon)
		d.intents.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("No payment intent", func(t *testing.T) {
		d := newBasketDeps(3)
		d.lockBasket(ctx, newMockTx(), "tok", basketWith("tok", 1, 3))

		_, err := d.svc.ApplyCoupon(ctx, "tok", "SAVE10")

		assert.ErrorIs(t, err, model.ErrPaymentIntentMissing)
		d.coupons.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("Unknown basket", func(t *testing.T) {
		d := newBasketDeps(3)
		tx := newMockTx()
		d.baskets.On("BeginTx", ctx).Return(tx, nil)
		d.baskets.On("GetByTokenForUpdate", ctx, tx, "tok").Return(nil, nil)

		_, err := d.svc.ApplyCoupon(ctx, "tok", "SAVE10")

		assert.ErrorIs(t, err, model.ErrBasketNotFound)
		assert.True(t, tx.rolledBack)
	})

	t.Run("Missing token", func(t *testing.T) {
		d := newBasketDeps(3)

		_, err := d.svc.ApplyCoupon(ctx, "", "SAVE10")

		assert.ErrorIs(t, err, model.ErrBasketNotFound)
		d.baskets.AssertNotCalled(t, "BeginTx", mock.Anything)
	})
}

func TestBasketService_RemoveCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("Not applied", func(t *testing.T) {
		d := newBasketDeps(3)
		d.lockBasket(ctx, newMockTx(), "tok", withIntent(basketWith("tok", 1, 3)))

		_, err := d.svc.RemoveCoupon(ctx, "tok")

		assert.ErrorIs(t, err, model.ErrCouponNotApplied)
	})

	t.Run("Success", func(t *testing.T) {
		d := newBasketDeps(3)
		b := withIntent(basketWith("tok", 2, 3))
		b.Coupon = &model.Coupon{Code: "SAVE10", PercentOff: 10}
		d.lockBasket(ctx, newMockTx(), "tok", b)
		d.intents.On("CreateOrUpdate", ctx, mock.MatchedBy(func(b *model.Basket) bool {
			return b.Coupon == nil && b.Total() == 6497
		})).Return(&model.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)
		d.baskets.On("SaveIfVersion", ctx, mock.Anything, mock.Anything, int64(2)).Return(nil)

		basket, err := d.svc.RemoveCoupon(ctx, "tok")

		require.NoError(t, err)
		assert.Nil(t, basket.Coupon)
		d.intents.AssertExpectations(t)
	})

	t.Run("Failed save restores the discounted total", func(t *testing.T) {
		d := newBasketDeps(3)
		locked := withIntent(basketWith("tok", 2, 3))
		locked.Coupon = &model.Coupon{Code: "SAVE10", PercentOff: 10}
		committed := withIntent(basketWith("tok", 2, 3))
		committed.Coupon = &model.Coupon{Code: "SAVE10", PercentOff: 10}
		d.lockBasket(ctx, newMockTx(), "tok", locked)
		d.baskets.On("SaveIfVersion", ctx, mock.Anything, mock.Anything, int64(2)).Return(errors.New("database error"))
		d.baskets.On("GetByToken", mock.Anything, "tok").Return(committed, nil)

		var pushed []int64
		d.intents.On("CreateOrUpdate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			pushed = append(pushed, args.Get(1).(*model.Basket).Total())
		}).Return(&model.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)

		_, err := d.svc.RemoveCoupon(ctx, "tok")

		require.Error(t, err)
		assert.Equal(t, []int64{6497, 5898}, pushed)
	})
}

func TestBasketService_CreateOrUpdatePaymentIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty basket", func(t *testing.T) {
		d := newBasketDeps(3)
		d.lockBasket(ctx, newMockTx(), "tok", basketWith("tok", 1, 0))

		_, err := d.svc.CreateOrUpdatePaymentIntent(ctx, "tok")

		assert.ErrorIs(t, err, model.ErrEmptyBasket)
	})

	t.Run("Stores new intent", func(t *testing.T) {
		d := newBasketDeps(3)
		d.lockBasket(ctx, newMockTx(), "tok", basketWith("tok", 1, 1))
		d.intents.On("CreateOrUpdate", ctx, mock.Anything).Return(&model.PaymentIntent{ID: "pi_9", ClientSecret: "pi_9_secret"}, nil)
		d.baskets.On("SaveIfVersion", ctx, mock.Anything, mock.Anything, int64(1)).Return(nil)

		basket, err := d.svc.CreateOrUpdatePaymentIntent(ctx, "tok")

		require.NoError(t, err)
		assert.Equal(t, "pi_9", *basket.PaymentIntentID)
		assert.True(t, basket.HasPaymentIntent())
	})

	t.Run("Failed save creates no second intent", func(t *testing.T) {
		d := newBasketDeps(3)
		d.lockBasket(ctx, newMockTx(), "tok", basketWith("tok", 1, 1))
		d.intents.On("CreateOrUpdate", ctx, mock.Anything).Return(&model.PaymentIntent{ID: "pi_9", ClientSecret: "pi_9_secret"}, nil)
		d.baskets.On("SaveIfVersion", ctx, mock.Anything, mock.Anything, int64(1)).Return(repository.ErrVersionConflict)
		// The committed basket never referenced an intent.
		d.baskets.On("GetByToken", mock.Anything, "tok").Return(basketWith("tok", 1, 1), nil)

		_, err := d.svc.CreateOrUpdatePaymentIntent(ctx, "tok")

		assert.ErrorIs(t, err, model.ErrBasketConflict)
		d.intents.AssertNumberOfCalls(t, "CreateOrUpdate", 1)
		d.baskets.AssertNumberOfCalls(t, "BeginTx", 1)
	})

	t.Run("Payments disabled", func(t *testing.T) {
		d := newBasketDeps(3)
		d.lockBasket(ctx, newMockTx(), "tok", basketWith("tok", 1, 1))
		d.intents.On("CreateOrUpdate", ctx, mock.Anything).Return(nil, model.ErrServiceUnavailable)

		_, err := d.svc.CreateOrUpdatePaymentIntent(ctx, "tok")

		assert.ErrorIs(t, err, model.ErrServiceUnavailable)
	})
}

func TestBasketService_Get(t *testing.T) {
	ctx := context.Background()
	d := newBasketDeps(3)
	d.baskets.On("GetByToken", ctx, "tok").Return(basketWith("tok", 1, 1), nil)
	d.baskets.On("GetByToken", ctx, "gone").Return(nil, nil)
	d.baskets.On("GetByToken", ctx, "boom").Return(nil, errors.New("database error"))

	basket, err := d.svc.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", basket.Token)

	_, err = d.svc.Get(ctx, "gone")
	assert.ErrorIs(t, err, model.ErrBasketNotFound)

	_, err = d.svc.Get(ctx, "")
	assert.ErrorIs(t, err, model.ErrBasketNotFound)

	_, err = d.svc.Get(ctx, "boom")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrBasketNotFound)
}

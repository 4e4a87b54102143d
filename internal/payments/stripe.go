package payments

import (
	"context"
	"fmt"

	"restore/internal/model"
	"restore/internal/observability"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// intentAPI is the subset of the Stripe payment intent client in use.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Update(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeIntents struct {
	api      intentAPI
	currency string
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewStripeIntents creates a Stripe-backed Intents using secretKey.
func NewStripeIntents(secretKey, currency string, metrics *observability.Metrics, logger zerolog.Logger) Intents {
	sc := client.New(secretKey, nil)
	return newStripeIntents(sc.PaymentIntents, currency, metrics, logger)
}

func newStripeIntents(api intentAPI, currency string, metrics *observability.Metrics, logger zerolog.Logger) *stripeIntents {
	return &stripeIntents{
		api:      api,
		currency: currency,
		metrics:  metrics,
		logger:   logger.With().Str("component", "payments").Logger(),
	}
}

func (s *stripeIntents) CreateOrUpdate(ctx context.Context, basket *model.Basket) (*model.PaymentIntent, error) {
	amount := basket.Total()

	params := &stripe.PaymentIntentParams{
		Amount: stripe.Int64(amount),
	}
	params.Context = ctx

	var (
		intent *stripe.PaymentIntent
		err    error
	)
	if basket.PaymentIntentID == nil || *basket.PaymentIntentID == "" {
		params.Currency = stripe.String(s.currency)
		params.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
		params.AddMetadata("basket_token", basket.Token)
		params.SetIdempotencyKey(createKey(basket, amount))
		intent, err = s.api.New(params)
	} else {
		intent, err = s.api.Update(*basket.PaymentIntentID, params)
	}
	s.metrics.CollaboratorCall("payments", err)

	if err != nil {
		s.logger.Error().Err(err).Int64("amount", amount).Msg("payment intent request failed")
		return nil, fmt.Errorf("payment intent request failed: %w", err)
	}

	s.logger.Debug().
		Str("payment_intent_id", intent.ID).
		Int64("amount", amount).
		Msg("payment intent synchronised")

	return &model.PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// createKey names an intent creation for one basket state, so a repeated
// create for the same token, version and amount returns the first intent.
func createKey(basket *model.Basket, amount int64) string {
	return fmt.Sprintf("restore-basket-%s-v%d-%d", basket.Token, basket.Version, amount)
}

package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// StripeProvider hosts payment via Stripe Checkout Sessions.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(apiKey string) *StripeProvider {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, intent Intent) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(intent.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(intent.Description),
				},
				UnitAmount: stripe.Int64(intent.AmountMinor),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(intent.SuccessURL + "?order_id=" + intent.OrderID),
		CancelURL:  stripe.String(intent.CancelURL + "?order_id=" + intent.OrderID),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
	params.AddMetadata("order_id", intent.OrderID)
	for k, v := range intent.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", &ProviderError{Reason: "failed to create checkout session", Err: err}
	}
	return sess.URL, nil
}

package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeGateway talks to Stripe's payment-intent API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a gateway around a dedicated Stripe client for the
// given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, params CreateParams) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(params.Amount),
		Currency:    stripe.String(params.Currency),
		Description: stripe.String(params.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	piParams.Context = ctx
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{}
	piParams.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, piParams)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) ListIntents(ctx context.Context, limit int64, startingAfter string) (*Page, error) {
	listParams := &stripe.PaymentIntentListParams{}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(limit)
	// one upstream page only; the caller owns pagination
	listParams.Single = true
	if startingAfter != "" {
		listParams.StartingAfter = stripe.String(startingAfter)
	}

	iter := g.api.PaymentIntents.List(listParams)
	page := &Page{}
	for iter.Next() {
		page.Intents = append(page.Intents, *intentFromStripe(iter.PaymentIntent()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list payment intents: %w", err)
	}
	page.HasMore = iter.PaymentIntentList().HasMore
	return page, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Description:  pi.Description,
		Status:       string(pi.Status),
		Created:      pi.Created,
		Metadata:     pi.Metadata,
	}
}

package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/reelcart/storefront/internal/app/config"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// LineItem is one purchasable line on a checkout session. Price is in major
// currency units; it is converted to the smallest unit for the provider.
type LineItem struct {
	Name        string
	Description string
	UnitPrice   float64
	Quantity    int
}

// CheckoutSession is the provider-side session the buyer is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutProvider creates hosted checkout sessions with a payment provider.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (*CheckoutSession, error)
}

type stripeProvider struct {
	currency string
}

func NewStripeProvider(cfg config.StripeConfig) CheckoutProvider {
	stripe.Key = cfg.SecretKey
	return &stripeProvider{currency: cfg.Currency}
}

func (p *stripeProvider) CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (*CheckoutSession, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("cannot create a checkout session with no line items")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(p.currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(int64(math.Round(item.UnitPrice * 100))),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

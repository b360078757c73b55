package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/groovegrid/groovegrid/internal/pricing"
)

// Currency for all checkouts. Catalog prices are CAD; Stripe wants the
// lowercase ISO code.
const currency = "cad"

// ErrSessionCreation wraps any Stripe API failure while building a session.
var ErrSessionCreation = errors.New("stripe session creation failed")

// Session is the subset of the created checkout session handed back to the
// checkout handler: the id to persist and the URL to redirect the buyer to.
type Session struct {
	ID  string
	URL string
}

// SessionCreator is what checkout handlers depend on; tests substitute a
// fake, production uses SessionBuilder.
type SessionCreator interface {
	CreateSession(ctx context.Context, in *Intent, quote pricing.Quote) (*Session, error)
}

// SessionBuilder creates Stripe Checkout sessions in payment mode. The
// Stripe API key is process-global (stripe.Key), set once at startup.
type SessionBuilder struct {
	successURL string
	cancelURL  string
}

// NewSessionBuilder returns a builder that redirects buyers to the given
// URLs after checkout. successURL should contain Stripe's
// {CHECKOUT_SESSION_ID} placeholder.
func NewSessionBuilder(successURL, cancelURL string) *SessionBuilder {
	return &SessionBuilder{successURL: successURL, cancelURL: cancelURL}
}

// CreateSession builds one Stripe line item per cart entry plus separate
// lines for the platform fee and tax, so the buyer sees the same breakdown
// the pricing engine computed. The intent is attached as flat metadata.
func (b *SessionBuilder) CreateSession(ctx context.Context, in *Intent, quote pricing.Quote) (*Session, error) {
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Items)+2)
	for _, it := range in.Items {
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(pricing.Cents(it.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	if quote.PlatformFee.IsPositive() {
		lines = append(lines, feeLine("Service fee", pricing.Cents(quote.PlatformFee)))
	}
	if quote.Tax.IsPositive() {
		lines = append(lines, feeLine("Tax", pricing.Cents(quote.Tax)))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lines,
		SuccessURL:    stripe.String(b.successURL),
		CancelURL:     stripe.String(b.cancelURL),
		CustomerEmail: stripe.String(in.BuyerEmail),
	}
	params.Context = ctx

	meta, err := in.Metadata()
	if err != nil {
		return nil, err
	}
	for k, v := range meta {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func feeLine(name string, cents int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(cents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
		Quantity: stripe.Int64(1),
	}
}

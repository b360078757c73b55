package payments

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// EventCheckoutCompleted is the only Stripe event type that triggers
// fulfillment. Everything else is acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// ErrInvalidSignature is returned when the Stripe-Signature header does not
// verify against the endpoint secret, or the timestamp is stale.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CompletedSession carries the fields fulfillment needs from a completed
// checkout session event.
type CompletedSession struct {
	SessionID       string
	PaymentIntentID string
	CustomerEmail   string
	CustomerPhone   string
	Metadata        map[string]string
}

// VerifyEvent checks the payload signature and parses the event envelope.
// The raw request body must be passed untouched; re-serialized JSON breaks
// the HMAC.
func VerifyEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// ParseCompletedSession extracts the checkout session from a
// checkout.session.completed event.
func ParseCompletedSession(event stripe.Event) (*CompletedSession, error) {
	if event.Type != EventCheckoutCompleted {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	cs := &CompletedSession{
		SessionID: s.ID,
		Metadata:  s.Metadata,
	}
	if s.PaymentIntent != nil {
		cs.PaymentIntentID = s.PaymentIntent.ID
	}
	if s.CustomerDetails != nil {
		cs.CustomerEmail = s.CustomerDetails.Email
		cs.CustomerPhone = s.CustomerDetails.Phone
	}
	if cs.CustomerEmail == "" {
		cs.CustomerEmail = s.CustomerEmail
	}
	return cs, nil
}

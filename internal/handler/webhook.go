package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/groovegrid/groovegrid/internal/monitoring"
	"github.com/groovegrid/groovegrid/internal/payments"
)

// maxWebhookBody caps the raw payload read. Stripe events are small; a
// larger body is not Stripe.
const maxWebhookBody = 1 << 20

// CompletedSessionHandler is implemented by the fulfillment dispatcher.
type CompletedSessionHandler interface {
	HandleCompletedSession(ctx context.Context, cs *payments.CompletedSession) error
}

// WebhookHandler receives Stripe webhook deliveries. The raw body must be
// verified against the Stripe-Signature header before anything is parsed.
type WebhookHandler struct {
	secret     string
	dispatcher CompletedSessionHandler
}

// NewWebhookHandler wires a webhook handler with the endpoint secret.
func NewWebhookHandler(secret string, dispatcher CompletedSessionHandler) *WebhookHandler {
	return &WebhookHandler{secret: secret, dispatcher: dispatcher}
}

// HandleStripe handles POST /v1/webhooks/stripe.
//
// Only checkout.session.completed triggers fulfillment; every other event
// type is acknowledged and dropped. After a valid signature the response is
// always 200: returning an error would make Stripe redeliver a payload
// that will fail the same way, and fulfillment failures are already
// recorded on our side (order row, log, counter).
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		monitoring.WebhookRejections.WithLabelValues("payload").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable payload"})
	}

	event, err := payments.VerifyEvent(payload, c.Request().Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		monitoring.WebhookRejections.WithLabelValues("signature").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	if event.Type != payments.EventCheckoutCompleted {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	cs, err := payments.ParseCompletedSession(event)
	if err != nil {
		// The signature verified, so this is a genuine Stripe delivery that
		// will fail identically on every retry. Acknowledge it and keep the
		// failure visible on our side.
		monitoring.WebhookRejections.WithLabelValues("payload").Inc()
		c.Logger().Errorf("webhook: parse completed session %s: %v", event.ID, err)
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	if err := h.dispatcher.HandleCompletedSession(c.Request().Context(), cs); err != nil {
		c.Logger().Errorf("webhook: fulfillment for session %s: %v", cs.SessionID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

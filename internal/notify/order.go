package notify

import (
	"context"

	"github.com/groovegrid/groovegrid/internal/monitoring"
	"github.com/groovegrid/groovegrid/internal/queue"
)

// OrderConfirmationSender renders and sends confirmation emails for
// consumed order completions.
type OrderConfirmationSender struct {
	mailer Mailer
}

// NewOrderConfirmationSender returns a sender backed by the given mailer.
func NewOrderConfirmationSender(mailer Mailer) *OrderConfirmationSender {
	return &OrderConfirmationSender{mailer: mailer}
}

// NotifyOrderCompleted sends the confirmation email for one order.
func (s *OrderConfirmationSender) NotifyOrderCompleted(ctx context.Context, ev queue.OrderCompletedEvent) error {
	subject, body := RenderOrderConfirmation(ev)
	if err := s.mailer.Send(ctx, ev.BuyerName, ev.BuyerEmail, subject, body); err != nil {
		monitoring.EmailFailures.WithLabelValues("order").Inc()
		return err
	}
	monitoring.EmailsSent.WithLabelValues("order").Inc()
	return nil
}

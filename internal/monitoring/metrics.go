// Package monitoring registers the Prometheus counters exposed on /metrics.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersFulfilled counts orders completed end to end, by purchase kind.
	OrdersFulfilled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groovegrid_orders_fulfilled_total",
		Help: "Orders fulfilled successfully, by purchase kind.",
	}, []string{"kind"})

	// FulfillmentFailures counts orders whose grant step failed after the
	// order row was committed. Each one needs operator follow-up.
	FulfillmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groovegrid_fulfillment_failures_total",
		Help: "Fulfillment handler failures leaving an order without grants, by purchase kind.",
	}, []string{"kind"})

	// WebhookRejections counts webhook deliveries rejected before
	// dispatch, by reason (signature, payload, event_type).
	WebhookRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groovegrid_webhook_rejections_total",
		Help: "Stripe webhook deliveries rejected before fulfillment, by reason.",
	}, []string{"reason"})

	// EmailsSent counts outbound transactional and campaign emails.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groovegrid_emails_sent_total",
		Help: "Emails handed to the mail provider, by kind (order, campaign).",
	}, []string{"kind"})

	// EmailFailures counts emails the provider refused. Delivery failures
	// never fail the surrounding operation, so this counter is the main
	// signal that notifications are broken.
	EmailFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groovegrid_email_failures_total",
		Help: "Email sends rejected by the provider, by kind (order, campaign).",
	}, []string{"kind"})

	// CheckoutSessions counts Stripe sessions created, by purchase kind.
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groovegrid_checkout_sessions_total",
		Help: "Stripe checkout sessions created, by purchase kind.",
	}, []string{"kind"})
)

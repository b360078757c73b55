// Package fulfillment turns a paid Stripe checkout session into an order
// plus the grants it entitles the buyer to (tickets, passes, package
// credits or a course seat). Order creation and granting run in separate
// transactions: a grant failure must never roll back the order row, because
// the payment has already settled and the order is the operator's handle
// for fixing things up.
package fulfillment

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/monitoring"
	"github.com/groovegrid/groovegrid/internal/payments"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// OrderStore is the slice of OrderRepo the dispatcher needs.
type OrderStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error
	AddItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error
}

// PendingStore resolves and retires checkout intents by session id.
type PendingStore interface {
	GetBySessionID(ctx context.Context, sessionID string) (*repository.PendingOrder, error)
	MarkCompleted(ctx context.Context, sessionID string) error
}

// Handler grants what one purchase kind entitles the buyer to. It runs in
// its own transaction after the order row is committed.
type Handler interface {
	Fulfill(ctx context.Context, tx *sql.Tx, order *model.Order, items []payments.LineItem) error
}

// Notifier hands a completed order to the notification pipeline.
type Notifier interface {
	OrderCompleted(ctx context.Context, order *model.Order, kind payments.PurchaseKind, items []payments.LineItem) error
}

// Dispatcher is the fulfillment entry point called by the webhook handler.
type Dispatcher struct {
	txr      repository.TxRunner
	orders   OrderStore
	pending  PendingStore
	handlers map[payments.PurchaseKind]Handler
	notifier Notifier
}

// NewDispatcher wires a dispatcher. notifier may be nil when the queue is
// not configured; fulfillment then completes without sending email.
func NewDispatcher(txr repository.TxRunner, orders OrderStore, pending PendingStore,
	handlers map[payments.PurchaseKind]Handler, notifier Notifier) *Dispatcher {
	return &Dispatcher{txr: txr, orders: orders, pending: pending, handlers: handlers, notifier: notifier}
}

// HandleCompletedSession processes one checkout.session.completed delivery.
// A duplicate delivery (order already exists for the session) is a clean
// no-op. A grant failure leaves the committed order in place and returns
// the error for logging; the caller still acknowledges the webhook so
// Stripe stops retrying a delivery that can no longer succeed differently.
func (d *Dispatcher) HandleCompletedSession(ctx context.Context, cs *payments.CompletedSession) error {
	intent, err := d.resolveIntent(ctx, cs)
	if err != nil {
		// The buyer has paid; leave enough in the log to reconcile the
		// session by hand.
		monitoring.WebhookRejections.WithLabelValues("payload").Inc()
		log.Printf("fulfillment: undecodable intent for session %s (purchase_type=%q buyer=%q): %v",
			cs.SessionID, cs.Metadata["purchase_type"], cs.CustomerEmail, err)
		return err
	}

	order := &model.Order{
		OrderNumber:     uuid.NewString(),
		BuyerEmail:      intent.BuyerEmail,
		BuyerName:       intent.BuyerName,
		Subtotal:        intent.Subtotal,
		Fees:            intent.Fees,
		Tax:             intent.Tax,
		Total:           intent.Total,
		Currency:        "CAD",
		StripeSessionID: cs.SessionID,
	}
	if intent.OrganizationID != 0 {
		order.OrganizationID = &intent.OrganizationID
	}
	if intent.EventID != 0 {
		order.EventID = &intent.EventID
	}
	if cs.PaymentIntentID != "" {
		order.StripePaymentIntentID = &cs.PaymentIntentID
	}
	if cs.CustomerPhone != "" {
		order.BuyerPhone = &cs.CustomerPhone
	}
	// Checkout collects the card email; prefer it over the intent's copy.
	if cs.CustomerEmail != "" {
		order.BuyerEmail = cs.CustomerEmail
	}

	err = d.txr.RunInTx(ctx, func(tx *sql.Tx) error {
		if err := d.orders.CreateTx(ctx, tx, order); err != nil {
			return err
		}
		for _, it := range intent.Items {
			item := lineToOrderItem(order.ID, intent.Kind, it)
			if err := d.orders.AddItemTx(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, repository.ErrDuplicateSession) {
		log.Printf("fulfillment: session %s already fulfilled, skipping", cs.SessionID)
		return nil
	}
	if err != nil {
		return err
	}

	handler, ok := d.handlers[intent.Kind]
	if !ok {
		// Should be unreachable given the closed kind set, but an order
		// without grants beats a lost payment.
		monitoring.FulfillmentFailures.WithLabelValues(string(intent.Kind)).Inc()
		log.Printf("fulfillment: no handler for kind %s, order %d kept without grants", intent.Kind, order.ID)
		return nil
	}
	err = d.txr.RunInTx(ctx, func(tx *sql.Tx) error {
		return handler.Fulfill(ctx, tx, order, intent.Items)
	})
	if err != nil {
		monitoring.FulfillmentFailures.WithLabelValues(string(intent.Kind)).Inc()
		log.Printf("fulfillment: grants failed for order %d (session %s): %v", order.ID, cs.SessionID, err)
		return err
	}
	monitoring.OrdersFulfilled.WithLabelValues(string(intent.Kind)).Inc()

	if d.pending != nil {
		if err := d.pending.MarkCompleted(ctx, cs.SessionID); err != nil {
			log.Printf("fulfillment: mark pending completed for session %s: %v", cs.SessionID, err)
		}
	}
	if d.notifier != nil {
		if err := d.notifier.OrderCompleted(ctx, order, intent.Kind, intent.Items); err != nil {
			log.Printf("fulfillment: publish order %d completed: %v", order.ID, err)
		}
	}
	return nil
}

// resolveIntent prefers the durable pending order row and falls back to the
// session metadata bag.
func (d *Dispatcher) resolveIntent(ctx context.Context, cs *payments.CompletedSession) (*payments.Intent, error) {
	if d.pending != nil {
		p, err := d.pending.GetBySessionID(ctx, cs.SessionID)
		if err == nil {
			return pendingToIntent(p)
		}
		if !errors.Is(err, repository.ErrPendingOrderNotFound) {
			log.Printf("fulfillment: pending lookup for session %s: %v", cs.SessionID, err)
		}
	}
	return payments.DecodeIntent(cs.Metadata)
}

func pendingToIntent(p *repository.PendingOrder) (*payments.Intent, error) {
	kind, err := payments.ParsePurchaseKind(p.PurchaseKind)
	if err != nil {
		return nil, err
	}
	meta := map[string]string{
		"purchase_type": string(kind),
		"buyer_email":   p.BuyerEmail,
		"buyer_name":    p.BuyerName,
		"items":         p.ItemsJSON,
		"subtotal":      p.Subtotal.StringFixed(2),
		"fees":          p.Fees.StringFixed(2),
		"tax":           p.Tax.StringFixed(2),
		"total":         p.Total.StringFixed(2),
	}
	in, err := payments.DecodeIntent(meta)
	if err != nil {
		return nil, err
	}
	if p.OrganizationID != nil {
		in.OrganizationID = *p.OrganizationID
	}
	if p.EventID != nil {
		in.EventID = *p.EventID
	}
	return in, nil
}

func lineToOrderItem(orderID uint64, kind payments.PurchaseKind, it payments.LineItem) *model.OrderItem {
	item := &model.OrderItem{
		OrderID:      orderID,
		ItemType:     kind.ItemType(),
		Quantity:     uint32(it.Quantity),
		PricePerItem: it.UnitPrice,
		Subtotal:     it.UnitPrice.Mul(decimalFromInt(it.Quantity)),
	}
	if it.TicketTypeID != 0 {
		item.TicketTypeID = &it.TicketTypeID
	}
	if it.PassTypeID != 0 {
		item.PassTypeID = &it.PassTypeID
	}
	if it.PackageID != 0 {
		item.PackageID = &it.PackageID
	}
	if it.CourseID != 0 {
		item.CourseID = &it.CourseID
	}
	return item
}

func decimalFromInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// timeNow is swapped in tests to pin grant expiry dates.
var timeNow = time.Now

package fulfillment

import (
	"context"
	"log"
	"time"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/payments"
	"github.com/groovegrid/groovegrid/internal/queue"
)

// EventPublisher is the slice of the queue publisher the notifier needs.
type EventPublisher interface {
	PublishOrderCompleted(ctx context.Context, event queue.OrderCompletedEvent) error
}

// OrgStore resolves organization display names for the email.
type OrgStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Organization, error)
}

// EventStore resolves event titles for the email.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// QueueNotifier builds the order-completed event and hands it to RabbitMQ.
// Name lookups are best effort; a missing name just leaves the field blank
// in the email.
type QueueNotifier struct {
	publisher EventPublisher
	orgs      OrgStore
	events    EventStore
}

// NewQueueNotifier returns a notifier publishing through the given publisher.
func NewQueueNotifier(publisher EventPublisher, orgs OrgStore, events EventStore) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, orgs: orgs, events: events}
}

// OrderCompleted publishes the event for one fulfilled order.
func (n *QueueNotifier) OrderCompleted(ctx context.Context, order *model.Order, kind payments.PurchaseKind, items []payments.LineItem) error {
	ev := queue.OrderCompletedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Kind:        string(kind),
		BuyerEmail:  order.BuyerEmail,
		BuyerName:   order.BuyerName,
		Subtotal:    order.Subtotal.StringFixed(2),
		Fees:        order.Fees.StringFixed(2),
		Tax:         order.Tax.StringFixed(2),
		Total:       order.Total.StringFixed(2),
		Currency:    order.Currency,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if order.OrganizationID != nil && n.orgs != nil {
		if org, err := n.orgs.GetByID(ctx, *order.OrganizationID); err == nil {
			ev.OrgName = org.Name
		} else {
			log.Printf("notifier: org %d lookup: %v", *order.OrganizationID, err)
		}
	}
	if order.EventID != nil && n.events != nil {
		if e, err := n.events.GetByID(ctx, *order.EventID); err == nil {
			ev.EventTitle = e.Title
		} else {
			log.Printf("notifier: event %d lookup: %v", *order.EventID, err)
		}
	}
	for _, it := range items {
		ev.Items = append(ev.Items, queue.OrderCompletedRow{
			Name:      it.Name,
			Quantity:  uint32(it.Quantity),
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.UnitPrice.Mul(decimalFromInt(it.Quantity)).StringFixed(2),
		})
	}
	return n.publisher.PublishOrderCompleted(ctx, ev)
}

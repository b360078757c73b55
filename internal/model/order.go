package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order item types, one per fulfillment path.
const (
	ItemTypeTicket  = "ticket"
	ItemTypePass    = "pass"
	ItemTypePackage = "package"
	ItemTypeCourse  = "course"
)

// Order is one completed checkout transaction. Exactly one row exists per
// Stripe session (UNIQUE on stripe_session_id); the row is immutable after
// creation apart from status.
type Order struct {
	ID                    uint64          `json:"id"`                       // orders.id
	OrderNumber           string          `json:"order_number"`             // orders.order_number (uuid)
	OrganizationID        *uint64         `json:"organization_id"`          // orders.organization_id (nullable)
	EventID               *uint64         `json:"event_id"`                 // orders.event_id (nullable)
	BuyerEmail            string          `json:"buyer_email"`              // orders.buyer_email
	BuyerName             string          `json:"buyer_name"`               // orders.buyer_name
	BuyerPhone            *string         `json:"buyer_phone"`              // orders.buyer_phone (nullable)
	Subtotal              decimal.Decimal `json:"subtotal"`                 // orders.subtotal
	Fees                  decimal.Decimal `json:"fees"`                     // orders.fees
	Tax                   decimal.Decimal `json:"tax"`                      // orders.tax
	Total                 decimal.Decimal `json:"total"`                    // orders.total
	Currency              string          `json:"currency"`                 // orders.currency
	StripeSessionID       string          `json:"stripe_session_id"`        // orders.stripe_session_id (unique)
	StripePaymentIntentID *string         `json:"stripe_payment_intent_id"` // orders.stripe_payment_intent_id (nullable)
	PaymentStatus         string          `json:"payment_status"`           // orders.payment_status
	Status                string          `json:"status"`                   // orders.status
	CreatedAt             time.Time       `json:"created_at"`               // orders.created_at
	UpdatedAt             time.Time       `json:"updated_at"`               // orders.updated_at
}

// OrderItem is one priced line within an order.
type OrderItem struct {
	ID           uint64          `json:"id"`             // order_items.id
	OrderID      uint64          `json:"order_id"`       // order_items.order_id
	ItemType     string          `json:"item_type"`      // order_items.item_type
	TicketTypeID *uint64         `json:"ticket_type_id"` // order_items.ticket_type_id (nullable)
	PassTypeID   *uint64         `json:"pass_type_id"`   // order_items.pass_type_id (nullable)
	PackageID    *uint64         `json:"package_id"`     // order_items.package_id (nullable)
	CourseID     *uint64         `json:"course_id"`      // order_items.course_id (nullable)
	Quantity     uint32          `json:"quantity"`       // order_items.quantity
	PricePerItem decimal.Decimal `json:"price_per_item"` // order_items.price_per_item
	Subtotal     decimal.Decimal `json:"subtotal"`       // order_items.subtotal
	CreatedAt    time.Time       `json:"created_at"`     // order_items.created_at
}

package model

import "time"

// Ticket status values. A ticket is created valid and only its status may
// change afterwards.
const (
	TicketStatusValid = "valid"
	TicketStatusUsed  = "used"
	TicketStatusVoid  = "void"
)

// Ticket is one admission credential. Fulfillment creates exactly one row
// per purchased unit; the QR code is derived from (order, ticket type,
// sequence index) and is unique per instance.
type Ticket struct {
	ID           uint64    `json:"id"`             // tickets.id
	OrderID      uint64    `json:"order_id"`       // tickets.order_id
	TicketTypeID uint64    `json:"ticket_type_id"` // tickets.ticket_type_id
	QRCode       string    `json:"qr_code"`        // tickets.qr_code (unique)
	Status       string    `json:"status"`         // tickets.status
	CreatedAt    time.Time `json:"created_at"`     // tickets.created_at
}

package fulfillment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/payments"
)

// TicketTypeStore is the slice of TicketTypeRepo ticket fulfillment needs.
type TicketTypeStore interface {
	ReserveQuantityTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error
}

// TicketStore mints admission credentials.
type TicketStore interface {
	CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error
}

// TicketHandler grants one ticket row per purchased unit. The conditional
// quantity update runs first, so an oversell rolls the whole grant back
// before any QR code exists.
type TicketHandler struct {
	types   TicketTypeStore
	tickets TicketStore
}

// NewTicketHandler returns a handler for ticket_purchase orders.
func NewTicketHandler(types TicketTypeStore, tickets TicketStore) *TicketHandler {
	return &TicketHandler{types: types, tickets: tickets}
}

// Fulfill reserves quantity per tier and mints tickets with deterministic
// QR codes derived from (order, ticket type, unit index).
func (h *TicketHandler) Fulfill(ctx context.Context, tx *sql.Tx, order *model.Order, items []payments.LineItem) error {
	var minted []model.Ticket
	for _, it := range items {
		if it.TicketTypeID == 0 || it.Quantity <= 0 {
			return fmt.Errorf("ticket item missing ticket_type_id or quantity")
		}
		qty := uint32(it.Quantity)
		if err := h.types.ReserveQuantityTx(ctx, tx, it.TicketTypeID, qty); err != nil {
			return fmt.Errorf("reserve %d units of ticket type %d: %w", qty, it.TicketTypeID, err)
		}
		for seq := int64(1); seq <= it.Quantity; seq++ {
			minted = append(minted, model.Ticket{
				OrderID:      order.ID,
				TicketTypeID: it.TicketTypeID,
				QRCode:       fmt.Sprintf("TICKET-%d-%d-%d", order.ID, it.TicketTypeID, seq),
			})
		}
	}
	return h.tickets.CreateBulkTx(ctx, tx, minted)
}

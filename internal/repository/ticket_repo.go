package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/groovegrid/groovegrid/internal/model"
)

// TicketRepo manages individual admission credentials.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateBulkTx inserts all given tickets in a single multi-row statement
// within the caller's transaction. Fulfillment uses this so an order's
// tickets appear all together or not at all.
func (r *TicketRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO tickets (order_id, ticket_type_id, qr_code, status) VALUES `)
	args := make([]any, 0, len(tickets)*4)
	for i, t := range tickets {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, t.OrderID, t.TicketTypeID, t.QRCode, model.TicketStatusValid)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// ListByEmail returns the tickets granted to a buyer email across all
// orders, newest first. This backs the buyer portal.
func (r *TicketRepo) ListByEmail(ctx context.Context, email string) ([]model.Ticket, error) {
	const q = `SELECT t.id, t.order_id, t.ticket_type_id, t.qr_code, t.status, t.created_at
	           FROM tickets t
	           JOIN orders o ON o.id = t.order_id
	           WHERE o.buyer_email = ?
	           ORDER BY t.id DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Ticket
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.TicketTypeID, &t.QRCode, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListByOrder returns the tickets minted for one order.
func (r *TicketRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.Ticket, error) {
	const q = `SELECT id, order_id, ticket_type_id, qr_code, status, created_at
	           FROM tickets WHERE order_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Ticket
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.TicketTypeID, &t.QRCode, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PendingOrder is the durable record of a checkout intent, written right
// after the Stripe session is created. The webhook path prefers this row
// over the session's metadata bag; metadata remains the fallback if the
// insert failed or the row was swept.
type PendingOrder struct {
	ID              uint64
	StripeSessionID string
	OrganizationID  *uint64
	EventID         *uint64
	PurchaseKind    string
	BuyerEmail      string
	BuyerName       string
	ItemsJSON       string
	Subtotal        decimal.Decimal
	Fees            decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PendingOrderRepo manages checkout intents keyed by Stripe session id.
type PendingOrderRepo struct {
	db *sql.DB
}

// NewPendingOrderRepo returns a new PendingOrderRepo bound to the given database.
func NewPendingOrderRepo(db *sql.DB) *PendingOrderRepo { return &PendingOrderRepo{db: db} }

// Create inserts a pending order in status pending.
func (r *PendingOrderRepo) Create(ctx context.Context, p *PendingOrder) error {
	const q = `INSERT INTO pending_orders
	           (stripe_session_id, organization_id, event_id, purchase_kind, buyer_email, buyer_name,
	            items_json, subtotal, fees, tax, total)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.StripeSessionID, p.OrganizationID, p.EventID, p.PurchaseKind, p.BuyerEmail, p.BuyerName,
		p.ItemsJSON, p.Subtotal, p.Fees, p.Tax, p.Total)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetBySessionID fetches the pending order for a Stripe session.
func (r *PendingOrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*PendingOrder, error) {
	const q = `SELECT id, stripe_session_id, organization_id, event_id, purchase_kind, buyer_email, buyer_name,
	                  items_json, subtotal, fees, tax, total, status, created_at, updated_at
	           FROM pending_orders WHERE stripe_session_id = ?`
	var p PendingOrder
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(
		&p.ID, &p.StripeSessionID, &p.OrganizationID, &p.EventID, &p.PurchaseKind,
		&p.BuyerEmail, &p.BuyerName, &p.ItemsJSON,
		&p.Subtotal, &p.Fees, &p.Tax, &p.Total, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPendingOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkCompleted flips a pending order to completed once fulfillment has
// created the real order.
func (r *PendingOrderRepo) MarkCompleted(ctx context.Context, sessionID string) error {
	const q = `UPDATE pending_orders SET status = 'completed' WHERE stripe_session_id = ?`
	_, err := r.db.ExecContext(ctx, q, sessionID)
	return err
}

// SweepAbandoned marks pending intents older than cutoff as abandoned.
func (r *PendingOrderRepo) SweepAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `UPDATE pending_orders SET status = 'abandoned'
	           WHERE status = 'pending' AND created_at < ?`
	res, err := r.db.ExecContext(ctx, q, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

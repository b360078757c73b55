package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/groovegrid/groovegrid/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a UNIQUE key violation.
const mysqlDuplicateEntry = 1062

// OrderRepo manages completed orders and their line items.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, order_number, organization_id, event_id, buyer_email, buyer_name, buyer_phone,
	subtotal, fees, tax, total, currency, stripe_session_id, stripe_payment_intent_id,
	payment_status, status, created_at, updated_at`

func scanOrder(sc interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	err := sc.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.OrganizationID,
		&o.EventID,
		&o.BuyerEmail,
		&o.BuyerName,
		&o.BuyerPhone,
		&o.Subtotal,
		&o.Fees,
		&o.Tax,
		&o.Total,
		&o.Currency,
		&o.StripeSessionID,
		&o.StripePaymentIntentID,
		&o.PaymentStatus,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateTx inserts a new order within the caller's transaction. A UNIQUE
// violation on stripe_session_id means another delivery of the same webhook
// already created the order; that case surfaces as ErrDuplicateSession so
// the dispatcher can acknowledge without redoing fulfillment.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders
	           (order_number, organization_id, event_id, buyer_email, buyer_name, buyer_phone,
	            subtotal, fees, tax, total, currency, stripe_session_id, stripe_payment_intent_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.OrderNumber, o.OrganizationID, o.EventID, o.BuyerEmail, o.BuyerName, o.BuyerPhone,
		o.Subtotal, o.Fees, o.Tax, o.Total, o.Currency, o.StripeSessionID, o.StripePaymentIntentID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateSession
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// AddItemTx inserts one order line within the caller's transaction.
func (r *OrderRepo) AddItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	const q = `INSERT INTO order_items
	           (order_id, item_type, ticket_type_id, pass_type_id, package_id, course_id, quantity, price_per_item, subtotal)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		it.OrderID, it.ItemType, it.TicketTypeID, it.PassTypeID, it.PackageID, it.CourseID,
		it.Quantity, it.PricePerItem, it.Subtotal)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID fetches an order by primary key.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return scanOrder(r.db.QueryRowContext(ctx, q, id))
}

// GetBySessionID fetches an order by its Stripe checkout session id.
func (r *OrderRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE stripe_session_id = ?`
	return scanOrder(r.db.QueryRowContext(ctx, q, sessionID))
}

// ListByOrganization returns a tenant's orders, newest first.
func (r *OrderRepo) ListByOrganization(ctx context.Context, orgID uint64, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `SELECT ` + orderColumns + ` FROM orders
	           WHERE organization_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.OrganizationID, &o.EventID, &o.BuyerEmail, &o.BuyerName,
			&o.BuyerPhone, &o.Subtotal, &o.Fees, &o.Tax, &o.Total, &o.Currency,
			&o.StripeSessionID, &o.StripePaymentIntentID, &o.PaymentStatus, &o.Status,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListByEmail returns a buyer's orders across all tenants, newest first.
func (r *OrderRepo) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE buyer_email = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.OrganizationID, &o.EventID, &o.BuyerEmail, &o.BuyerName,
			&o.BuyerPhone, &o.Subtotal, &o.Fees, &o.Tax, &o.Total, &o.Currency,
			&o.StripeSessionID, &o.StripePaymentIntentID, &o.PaymentStatus, &o.Status,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListItems returns the line items of one order.
func (r *OrderRepo) ListItems(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	const q = `SELECT id, order_id, item_type, ticket_type_id, pass_type_id, package_id, course_id,
	                  quantity, price_per_item, subtotal, created_at
	           FROM order_items WHERE order_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemType, &it.TicketTypeID, &it.PassTypeID,
			&it.PackageID, &it.CourseID, &it.Quantity, &it.PricePerItem, &it.Subtotal, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// DistinctBuyerEmails returns every distinct buyer who has completed an
// order with the organization, with the name from their latest order.
// Campaign execution uses this as its audience.
func (r *OrderRepo) DistinctBuyerEmails(ctx context.Context, orgID uint64) ([]model.Recipient, error) {
	const q = `SELECT o.buyer_email, o.buyer_name
	           FROM orders o
	           JOIN (SELECT buyer_email, MAX(id) AS max_id FROM orders
	                 WHERE organization_id = ? AND status = 'completed'
	                 GROUP BY buyer_email) latest
	             ON latest.max_id = o.id`
	rows, err := r.db.QueryContext(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Recipient
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.Email, &rec.Name); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

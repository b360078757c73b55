package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/groovegrid/groovegrid/internal/model"
)

// TicketTypeRepo manages ticket types and their sold counters. The sold
// counter is only ever advanced through ReserveQuantityTx, whose WHERE
// clause enforces quantity_sold <= quantity_available under concurrency
// without row locks held across application code.
type TicketTypeRepo struct {
	db *sql.DB
}

// NewTicketTypeRepo returns a new TicketTypeRepo bound to the given database.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{db: db} }

const ticketTypeColumns = `id, event_id, name, description, price, quantity_available, quantity_sold,
	sale_start_date, sale_end_date, is_active, sort_order, created_at, updated_at`

func scanTicketType(sc interface{ Scan(...any) error }) (*model.TicketType, error) {
	var t model.TicketType
	err := sc.Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.Description,
		&t.Price,
		&t.QuantityAvailable,
		&t.QuantitySold,
		&t.SaleStartDate,
		&t.SaleEndDate,
		&t.IsActive,
		&t.SortOrder,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new ticket type under the given event.
func (r *TicketTypeRepo) Create(ctx context.Context, t *model.TicketType) error {
	const q = `INSERT INTO ticket_types
	           (event_id, name, description, price, quantity_available, sale_start_date, sale_end_date, is_active, sort_order)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		t.EventID, t.Name, t.Description, t.Price, t.QuantityAvailable,
		t.SaleStartDate, t.SaleEndDate, t.IsActive, t.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	got, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// GetByID fetches a ticket type by primary key.
func (r *TicketTypeRepo) GetByID(ctx context.Context, id uint64) (*model.TicketType, error) {
	const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = ?`
	return scanTicketType(r.db.QueryRowContext(ctx, q, id))
}

// GetTx fetches a ticket type inside the caller's transaction.
func (r *TicketTypeRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.TicketType, error) {
	const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = ?`
	return scanTicketType(tx.QueryRowContext(ctx, q, id))
}

// ListByEvent returns all ticket types for an event in configured order.
func (r *TicketTypeRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types
	           WHERE event_id = ? ORDER BY sort_order ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketType
	for rows.Next() {
		var t model.TicketType
		if err := rows.Scan(
			&t.ID, &t.EventID, &t.Name, &t.Description, &t.Price,
			&t.QuantityAvailable, &t.QuantitySold, &t.SaleStartDate, &t.SaleEndDate,
			&t.IsActive, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a ticket type.
func (r *TicketTypeRepo) Update(ctx context.Context, t *model.TicketType) error {
	const q = `UPDATE ticket_types
	           SET name = ?, description = ?, price = ?, quantity_available = ?,
	               sale_start_date = ?, sale_end_date = ?, is_active = ?, sort_order = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		t.Name, t.Description, t.Price, t.QuantityAvailable,
		t.SaleStartDate, t.SaleEndDate, t.IsActive, t.SortOrder, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketTypeNotFound
	}
	return nil
}

// Delete removes a ticket type that has never sold a unit.
func (r *TicketTypeRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM ticket_types WHERE id = ? AND quantity_sold = 0`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM ticket_types WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketTypeNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// ErrConflict signals a delete blocked by dependent sales.
var ErrConflict = errors.New("conflict")

// ReserveQuantityTx atomically advances quantity_sold by qty if and only if
// the result stays within quantity_available. A zero-row update means the
// tier cannot cover the quantity and yields ErrSoldOut.
func (r *TicketTypeRepo) ReserveQuantityTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	const q = `UPDATE ticket_types
	           SET quantity_sold = quantity_sold + ?
	           WHERE id = ? AND quantity_sold + ? <= quantity_available`
	res, err := tx.ExecContext(ctx, q, qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM ticket_types WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketTypeNotFound
		}
		if err != nil {
			return err
		}
		return ErrSoldOut
	}
	return nil
}

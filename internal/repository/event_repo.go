package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/groovegrid/groovegrid/internal/model"
)

// EventRepo manages persistence for events. Ownership checks are performed
// here rather than in handlers: every mutating query filters on
// organization_id so a tenant can never touch another tenant's rows.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, organization_id, title, description, category, start_datetime, end_datetime,
	venue_name, address, city, capacity, status, created_at, updated_at`

func scanEvent(sc interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := sc.Scan(
		&e.ID,
		&e.OrganizationID,
		&e.Title,
		&e.Description,
		&e.Category,
		&e.StartDatetime,
		&e.EndDatetime,
		&e.VenueName,
		&e.Address,
		&e.City,
		&e.Capacity,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new draft event and populates the generated ID and
// DB-default fields on the given model.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events
	           (organization_id, title, description, category, start_datetime, end_datetime, venue_name, address, city, capacity)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.OrganizationID, e.Title, e.Description, e.Category, e.StartDatetime, e.EndDatetime,
		e.VenueName, e.Address, e.City, e.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	got, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// GetByID fetches an event by primary key.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	return scanEvent(r.db.QueryRowContext(ctx, q, id))
}

// GetOwned fetches an event and verifies it belongs to orgID. Returns
// ErrForbidden when the event exists under another tenant.
func (r *EventRepo) GetOwned(ctx context.Context, id, orgID uint64) (*model.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.OrganizationID != orgID {
		return nil, ErrForbidden
	}
	return e, nil
}

// ListByOrganization returns all events for a tenant, newest first.
func (r *EventRepo) ListByOrganization(ctx context.Context, orgID uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE organization_id = ? ORDER BY start_datetime DESC`
	return r.list(ctx, q, orgID)
}

// ListPublished returns the tenant's published, not-yet-ended events in
// chronological order. This feeds the public browse endpoints.
func (r *EventRepo) ListPublished(ctx context.Context, orgID uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
	           WHERE organization_id = ? AND status = 'published'
	           ORDER BY start_datetime ASC`
	return r.list(ctx, q, orgID)
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.OrganizationID, &e.Title, &e.Description, &e.Category,
			&e.StartDatetime, &e.EndDatetime, &e.VenueName, &e.Address, &e.City,
			&e.Capacity, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of an event owned by orgID.
func (r *EventRepo) Update(ctx context.Context, orgID uint64, e *model.Event) error {
	const q = `UPDATE events
	           SET title = ?, description = ?, category = ?, start_datetime = ?, end_datetime = ?,
	               venue_name = ?, address = ?, city = ?, capacity = ?
	           WHERE id = ? AND organization_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		e.Title, e.Description, e.Category, e.StartDatetime, e.EndDatetime,
		e.VenueName, e.Address, e.City, e.Capacity, e.ID, orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.explainMiss(ctx, e.ID, orgID)
	}
	return nil
}

// SetStatus moves an event between draft, published and cancelled. The
// WHERE clause enforces legal transitions: cancelled is terminal and a
// cancelled event cannot be republished.
func (r *EventRepo) SetStatus(ctx context.Context, id, orgID uint64, status string) error {
	const q = `UPDATE events SET status = ?
	           WHERE id = ? AND organization_id = ? AND status <> 'cancelled'`
	res, err := r.db.ExecContext(ctx, q, status, id, orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if err := r.explainMiss(ctx, id, orgID); err != nil {
			return err
		}
		return ErrNoChange
	}
	return nil
}

// Delete removes a draft event. Events that have ever been published keep
// their rows so order history stays intact; handlers cancel those instead.
func (r *EventRepo) Delete(ctx context.Context, id, orgID uint64) error {
	const q = `DELETE FROM events WHERE id = ? AND organization_id = ? AND status = 'draft'`
	res, err := r.db.ExecContext(ctx, q, id, orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if err := r.explainMiss(ctx, id, orgID); err != nil {
			return err
		}
		return ErrConflictDelete
	}
	return nil
}

// ErrConflictDelete is returned when a non-draft event delete is attempted.
var ErrConflictDelete = errors.New("event is not draft")

// explainMiss distinguishes "no such event" from "owned by someone else"
// after a zero-row UPDATE or DELETE.
func (r *EventRepo) explainMiss(ctx context.Context, id, orgID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, `SELECT organization_id FROM events WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if owner != orgID {
		return ErrForbidden
	}
	return nil
}

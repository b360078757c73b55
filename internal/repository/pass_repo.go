package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/groovegrid/groovegrid/internal/model"
)

// PassTypeRepo manages the pass catalog of an organization.
type PassTypeRepo struct {
	db *sql.DB
}

// NewPassTypeRepo returns a new PassTypeRepo bound to the given database.
func NewPassTypeRepo(db *sql.DB) *PassTypeRepo { return &PassTypeRepo{db: db} }

const passTypeColumns = `id, organization_id, name, description, price, credits_total, validity_days, is_active, created_at`

func scanPassType(sc interface{ Scan(...any) error }) (*model.PassType, error) {
	var p model.PassType
	err := sc.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CreditsTotal,
		&p.ValidityDays,
		&p.IsActive,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPassTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new pass type.
func (r *PassTypeRepo) Create(ctx context.Context, p *model.PassType) error {
	const q = `INSERT INTO pass_types (organization_id, name, description, price, credits_total, validity_days, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.OrganizationID, p.Name, p.Description, p.Price, p.CreditsTotal, p.ValidityDays, p.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	got, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

// GetByID fetches a pass type by primary key.
func (r *PassTypeRepo) GetByID(ctx context.Context, id uint64) (*model.PassType, error) {
	const q = `SELECT ` + passTypeColumns + ` FROM pass_types WHERE id = ?`
	return scanPassType(r.db.QueryRowContext(ctx, q, id))
}

// GetTx fetches a pass type inside the caller's transaction.
func (r *PassTypeRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.PassType, error) {
	const q = `SELECT ` + passTypeColumns + ` FROM pass_types WHERE id = ?`
	return scanPassType(tx.QueryRowContext(ctx, q, id))
}

// ListByOrganization returns the tenant's pass types. When activeOnly is
// set only purchasable entries are returned, for public listings.
func (r *PassTypeRepo) ListByOrganization(ctx context.Context, orgID uint64, activeOnly bool) ([]model.PassType, error) {
	q := `SELECT ` + passTypeColumns + ` FROM pass_types WHERE organization_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PassType
	for rows.Next() {
		var p model.PassType
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.Price,
			&p.CreditsTotal, &p.ValidityDays, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a pass type owned by orgID.
func (r *PassTypeRepo) Update(ctx context.Context, orgID uint64, p *model.PassType) error {
	const q = `UPDATE pass_types
	           SET name = ?, description = ?, price = ?, credits_total = ?, validity_days = ?, is_active = ?
	           WHERE id = ? AND organization_id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.Price, p.CreditsTotal, p.ValidityDays, p.IsActive, p.ID, orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPassTypeNotFound
	}
	return nil
}

// UserPassRepo manages pass grants created by fulfillment.
type UserPassRepo struct {
	db *sql.DB
}

// NewUserPassRepo returns a new UserPassRepo bound to the given database.
func NewUserPassRepo(db *sql.DB) *UserPassRepo { return &UserPassRepo{db: db} }

// CreateBulkTx inserts one user_passes row per purchased unit within the
// caller's transaction. PurchaseDate and ExpiryDate must be set by the
// caller; fulfillment derives expiry from the pass type's validity window.
func (r *UserPassRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, passes []model.UserPass) error {
	if len(passes) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO user_passes
	(order_id, pass_type_id, buyer_email, credits_total, credits_remaining, purchase_date, expiry_date, is_active) VALUES `)
	args := make([]any, 0, len(passes)*8)
	for i, p := range passes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, p.OrderID, p.PassTypeID, p.BuyerEmail, p.CreditsTotal, p.CreditsRemaining,
			p.PurchaseDate.UTC(), p.ExpiryDate.UTC(), true)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// ListByEmail returns a buyer's pass grants, unexpired and active first.
func (r *UserPassRepo) ListByEmail(ctx context.Context, email string) ([]model.UserPass, error) {
	const q = `SELECT id, order_id, pass_type_id, buyer_email, credits_total, credits_remaining,
	                  purchase_date, expiry_date, is_active, created_at, updated_at
	           FROM user_passes WHERE buyer_email = ?
	           ORDER BY is_active DESC, expiry_date DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.UserPass
	for rows.Next() {
		var p model.UserPass
		if err := rows.Scan(&p.ID, &p.OrderID, &p.PassTypeID, &p.BuyerEmail, &p.CreditsTotal,
			&p.CreditsRemaining, &p.PurchaseDate, &p.ExpiryDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeactivateExpired flips is_active off for passes past their expiry date.
// Intended for a periodic sweep; redemption flows also check expiry_date.
func (r *UserPassRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE user_passes SET is_active = 0 WHERE is_active = 1 AND expiry_date < ?`
	res, err := r.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

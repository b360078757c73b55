package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/groovegrid/groovegrid/internal/model"
)

// PackageRepo manages class packages and their enrollment grants.
type PackageRepo struct {
	db *sql.DB
}

// NewPackageRepo returns a new PackageRepo bound to the given database.
func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{db: db} }

const packageColumns = `id, organization_id, name, description, credits, price, validity_days, is_active, created_at`

func scanPackage(sc interface{ Scan(...any) error }) (*model.ClassPackage, error) {
	var p model.ClassPackage
	err := sc.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&p.Description,
		&p.Credits,
		&p.Price,
		&p.ValidityDays,
		&p.IsActive,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new class package.
func (r *PackageRepo) Create(ctx context.Context, p *model.ClassPackage) error {
	const q = `INSERT INTO class_packages (organization_id, name, description, credits, price, validity_days, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.OrganizationID, p.Name, p.Description, p.Credits, p.Price, p.ValidityDays, p.IsActive)
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

// GetByID fetches a class package by primary key.
func (r *PackageRepo) GetByID(ctx context.Context, id uint64) (*model.ClassPackage, error) {
	const q = `SELECT ` + packageColumns + ` FROM class_packages WHERE id = ?`
	return scanPackage(r.db.QueryRowContext(ctx, q, id))
}

// GetTx fetches a class package inside the caller's transaction.
func (r *PackageRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ClassPackage, error) {
	const q = `SELECT ` + packageColumns + ` FROM class_packages WHERE id = ?`
	return scanPackage(tx.QueryRowContext(ctx, q, id))
}

// ListByOrganization returns the tenant's class packages.
func (r *PackageRepo) ListByOrganization(ctx context.Context, orgID uint64, activeOnly bool) ([]model.ClassPackage, error) {
	q := `SELECT ` + packageColumns + ` FROM class_packages WHERE organization_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ClassPackage
	for rows.Next() {
		var p model.ClassPackage
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.Credits,
			&p.Price, &p.ValidityDays, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a package owned by orgID.
func (r *PackageRepo) Update(ctx context.Context, orgID uint64, p *model.ClassPackage) error {
	const q = `UPDATE class_packages
	           SET name = ?, description = ?, credits = ?, price = ?, validity_days = ?, is_active = ?
	           WHERE id = ? AND organization_id = ?`
	res, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.Credits, p.Price, p.ValidityDays, p.IsActive, p.ID, orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPackageNotFound
	}
	return nil
}

// CreateEnrollmentsTx inserts package enrollment grants within the caller's
// transaction, one row per purchased unit.
func (r *PackageRepo) CreateEnrollmentsTx(ctx context.Context, tx *sql.Tx, grants []model.PackageEnrollment) error {
	if len(grants) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO package_enrollments
	(order_id, package_id, buyer_email, credits_total, credits_remaining, expiry_date, status) VALUES `)
	args := make([]any, 0, len(grants)*7)
	for i, g := range grants {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, g.OrderID, g.PackageID, g.BuyerEmail, g.CreditsTotal, g.CreditsRemaining, g.ExpiryDate, g.Status)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// ListEnrollmentsByEmail returns a buyer's package grants for the portal.
func (r *PackageRepo) ListEnrollmentsByEmail(ctx context.Context, email string) ([]model.PackageEnrollment, error) {
	const q = `SELECT id, order_id, package_id, buyer_email, credits_total, credits_remaining, expiry_date, status, created_at
	           FROM package_enrollments WHERE buyer_email = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PackageEnrollment
	for rows.Next() {
		var g model.PackageEnrollment
		if err := rows.Scan(&g.ID, &g.OrderID, &g.PackageID, &g.BuyerEmail, &g.CreditsTotal,
			&g.CreditsRemaining, &g.ExpiryDate, &g.Status, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

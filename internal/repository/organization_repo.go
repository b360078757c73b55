package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/groovegrid/groovegrid/internal/model"
)

// OrganizationRepo manages persistence for organizations (tenants).
type OrganizationRepo struct {
	db *sql.DB
}

// NewOrganizationRepo returns a new OrganizationRepo bound to the given database.
func NewOrganizationRepo(db *sql.DB) *OrganizationRepo { return &OrganizationRepo{db: db} }

const orgColumns = `id, name, subdomain, email, phone, city, province, country, brand_color, is_active, created_at, updated_at`

func scanOrganization(row *sql.Row) (*model.Organization, error) {
	var o model.Organization
	err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Subdomain,
		&o.Email,
		&o.Phone,
		&o.City,
		&o.Province,
		&o.Country,
		&o.BrandColor,
		&o.IsActive,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID fetches an organization by primary key regardless of is_active.
func (r *OrganizationRepo) GetByID(ctx context.Context, id uint64) (*model.Organization, error) {
	const q = `SELECT ` + orgColumns + ` FROM organizations WHERE id = ?`
	return scanOrganization(r.db.QueryRowContext(ctx, q, id))
}

// GetBySubdomain fetches an active organization by its unique subdomain.
// Inactive tenants are invisible to public traffic.
func (r *OrganizationRepo) GetBySubdomain(ctx context.Context, subdomain string) (*model.Organization, error) {
	const q = `SELECT ` + orgColumns + ` FROM organizations WHERE subdomain = ? AND is_active = 1`
	return scanOrganization(r.db.QueryRowContext(ctx, q, subdomain))
}

// Update rewrites the mutable profile fields of an organization.
func (r *OrganizationRepo) Update(ctx context.Context, o *model.Organization) error {
	const q = `UPDATE organizations
	           SET name = ?, email = ?, phone = ?, city = ?, province = ?, country = ?, brand_color = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, o.Name, o.Email, o.Phone, o.City, o.Province, o.Country, o.BrandColor, o.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

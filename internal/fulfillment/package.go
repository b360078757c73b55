package fulfillment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/payments"
)

// PackageStore resolves packages and writes their enrollment grants.
type PackageStore interface {
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ClassPackage, error)
	CreateEnrollmentsTx(ctx context.Context, tx *sql.Tx, grants []model.PackageEnrollment) error
}

// PackageHandler grants one package enrollment per purchased unit, with
// credits and expiry taken from the package definition. A package with a
// zero validity window never expires.
type PackageHandler struct {
	packages PackageStore
}

// NewPackageHandler returns a handler for package_purchase orders.
func NewPackageHandler(packages PackageStore) *PackageHandler {
	return &PackageHandler{packages: packages}
}

// Fulfill writes the buyer's package grants keyed by email.
func (h *PackageHandler) Fulfill(ctx context.Context, tx *sql.Tx, order *model.Order, items []payments.LineItem) error {
	now := timeNow().UTC()
	var grants []model.PackageEnrollment
	for _, it := range items {
		if it.PackageID == 0 || it.Quantity <= 0 {
			return fmt.Errorf("package item missing package_id or quantity")
		}
		pkg, err := h.packages.GetTx(ctx, tx, it.PackageID)
		if err != nil {
			return fmt.Errorf("load package %d: %w", it.PackageID, err)
		}
		var expiry *time.Time
		if pkg.ValidityDays > 0 {
			t := now.Add(time.Duration(pkg.ValidityDays) * 24 * time.Hour)
			expiry = &t
		}
		for seq := int64(0); seq < it.Quantity; seq++ {
			grants = append(grants, model.PackageEnrollment{
				OrderID:          order.ID,
				PackageID:        pkg.ID,
				BuyerEmail:       order.BuyerEmail,
				CreditsTotal:     pkg.Credits,
				CreditsRemaining: pkg.Credits,
				ExpiryDate:       expiry,
				Status:           "active",
			})
		}
	}
	return h.packages.CreateEnrollmentsTx(ctx, tx, grants)
}

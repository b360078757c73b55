package fulfillment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/payments"
)

// PassTypeStore resolves pass definitions inside the grant transaction.
type PassTypeStore interface {
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.PassType, error)
}

// UserPassStore writes pass grants.
type UserPassStore interface {
	CreateBulkTx(ctx context.Context, tx *sql.Tx, passes []model.UserPass) error
}

// PassHandler grants one user_passes row per purchased unit. Credits and
// the validity window come from the pass type at fulfillment time, not from
// checkout, so a catalog edit mid-payment favors the current definition.
type PassHandler struct {
	types  PassTypeStore
	passes UserPassStore
}

// NewPassHandler returns a handler for pass_purchase orders.
func NewPassHandler(types PassTypeStore, passes UserPassStore) *PassHandler {
	return &PassHandler{types: types, passes: passes}
}

// Fulfill writes the buyer's pass grants keyed by email.
func (h *PassHandler) Fulfill(ctx context.Context, tx *sql.Tx, order *model.Order, items []payments.LineItem) error {
	now := timeNow().UTC()
	var grants []model.UserPass
	for _, it := range items {
		if it.PassTypeID == 0 || it.Quantity <= 0 {
			return fmt.Errorf("pass item missing pass_type_id or quantity")
		}
		pt, err := h.types.GetTx(ctx, tx, it.PassTypeID)
		if err != nil {
			return fmt.Errorf("load pass type %d: %w", it.PassTypeID, err)
		}
		expiry := now.Add(time.Duration(pt.ValidityDays) * 24 * time.Hour)
		for seq := int64(0); seq < it.Quantity; seq++ {
			grants = append(grants, model.UserPass{
				OrderID:          order.ID,
				PassTypeID:       pt.ID,
				BuyerEmail:       order.BuyerEmail,
				CreditsTotal:     pt.CreditsTotal,
				CreditsRemaining: pt.CreditsTotal,
				PurchaseDate:     now,
				ExpiryDate:       expiry,
			})
		}
	}
	return h.passes.CreateBulkTx(ctx, tx, grants)
}

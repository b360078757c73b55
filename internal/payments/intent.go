package payments

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// LineItem is one cart entry of a checkout intent. Exactly one of the ID
// fields is set, matching the intent's purchase kind. Unit prices are the
// server-side catalog prices; client-submitted prices are never trusted.
type LineItem struct {
	TicketTypeID uint64          `json:"ticket_type_id,omitempty"`
	PassTypeID   uint64          `json:"pass_type_id,omitempty"`
	PackageID    uint64          `json:"package_id,omitempty"`
	CourseID     uint64          `json:"course_id,omitempty"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
}

// Intent is everything fulfillment needs to recreate the order after
// payment: who bought what, for how much, under which tenant.
type Intent struct {
	Kind           PurchaseKind
	OrganizationID uint64
	EventID        uint64 // zero unless Kind is KindTicket
	BuyerEmail     string
	BuyerName      string
	Items          []LineItem
	Subtotal       decimal.Decimal
	Fees           decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// Metadata flattens the intent into the string bag Stripe attaches to the
// session. Items nest as a JSON array in a single key since Stripe metadata
// values are flat strings.
func (in *Intent) Metadata() (map[string]string, error) {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	m := map[string]string{
		"purchase_type":   string(in.Kind),
		"organization_id": strconv.FormatUint(in.OrganizationID, 10),
		"buyer_email":     in.BuyerEmail,
		"buyer_name":      in.BuyerName,
		"items":           string(items),
		"subtotal":        in.Subtotal.StringFixed(2),
		"fees":            in.Fees.StringFixed(2),
		"tax":             in.Tax.StringFixed(2),
		"total":           in.Total.StringFixed(2),
	}
	if in.EventID != 0 {
		m["event_id"] = strconv.FormatUint(in.EventID, 10)
	}
	return m, nil
}

// DecodeIntent rebuilds an Intent from a session metadata bag. It is the
// fallback path when no pending order row exists for the session.
func DecodeIntent(meta map[string]string) (*Intent, error) {
	kind, err := ParsePurchaseKind(meta["purchase_type"])
	if err != nil {
		return nil, err
	}
	in := &Intent{
		Kind:       kind,
		BuyerEmail: meta["buyer_email"],
		BuyerName:  meta["buyer_name"],
	}
	if v := meta["organization_id"]; v != "" {
		if in.OrganizationID, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("metadata organization_id: %w", err)
		}
	}
	if v := meta["event_id"]; v != "" {
		if in.EventID, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("metadata event_id: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(meta["items"]), &in.Items); err != nil {
		return nil, fmt.Errorf("metadata items: %w", err)
	}
	for key, dst := range map[string]*decimal.Decimal{
		"subtotal": &in.Subtotal,
		"fees":     &in.Fees,
		"tax":      &in.Tax,
		"total":    &in.Total,
	} {
		d, err := decimal.NewFromString(meta[key])
		if err != nil {
			return nil, fmt.Errorf("metadata %s: %w", key, err)
		}
		*dst = d
	}
	return in, nil
}

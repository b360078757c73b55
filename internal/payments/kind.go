// Package payments builds Stripe Checkout sessions for the four purchase
// flows and verifies the webhook deliveries that complete them. The checkout
// intent travels two ways at once: as a pending_orders row keyed by session
// id, and as the session's flat metadata bag. Either one alone is enough to
// fulfill.
package payments

import (
	"errors"
	"fmt"

	"github.com/groovegrid/groovegrid/internal/model"
)

// PurchaseKind identifies which fulfillment path an order takes. The set is
// closed: anything else arriving in a webhook is rejected before grants are
// written.
type PurchaseKind string

const (
	KindTicket  PurchaseKind = "ticket_purchase"
	KindPass    PurchaseKind = "pass_purchase"
	KindPackage PurchaseKind = "package_purchase"
	KindCourse  PurchaseKind = "course_enrollment"
)

// ErrUnknownKind is returned when a metadata bag carries a purchase type
// outside the closed set.
var ErrUnknownKind = errors.New("unknown purchase kind")

// ParsePurchaseKind validates a raw purchase type string.
func ParsePurchaseKind(s string) (PurchaseKind, error) {
	switch k := PurchaseKind(s); k {
	case KindTicket, KindPass, KindPackage, KindCourse:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// ItemType maps a purchase kind to its order_items.item_type value.
func (k PurchaseKind) ItemType() string {
	switch k {
	case KindTicket:
		return model.ItemTypeTicket
	case KindPass:
		return model.ItemTypePass
	case KindPackage:
		return model.ItemTypePackage
	case KindCourse:
		return model.ItemTypeCourse
	}
	return ""
}

// Package pricing computes checkout totals. It is pure: no I/O, no clock,
// no database. All arithmetic uses decimal values so that repeated small
// line items cannot accumulate binary-float drift.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoItems is returned when a cart with no line items is priced.
var ErrNoItems = errors.New("pricing: no line items")

var (
	// platformFeeRate is the 2% GrooveGrid service fee applied to the subtotal.
	platformFeeRate = decimal.New(2, -2)
	// taxRate is 13% HST, applied to subtotal plus platform fee.
	taxRate = decimal.New(13, -2)

	hundred = decimal.New(100, 0)
)

// LineItem is one priced row of a cart.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Quote is the priced result of a cart. Total always equals
// Subtotal + PlatformFee + Tax exactly, because each derived amount is
// rounded to cents before the final sum.
type Quote struct {
	Subtotal    decimal.Decimal
	PlatformFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Price computes a Quote for the given line items.
//
//	subtotal = sum(unitPrice * quantity)
//	fee      = round2(subtotal * 0.02)
//	tax      = round2((subtotal + fee) * 0.13)
//	total    = subtotal + fee + tax
func Price(items []LineItem) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrNoItems
	}
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.New(it.Quantity, 0)))
	}
	subtotal = subtotal.Round(2)
	fee := subtotal.Mul(platformFeeRate).Round(2)
	tax := subtotal.Add(fee).Mul(taxRate).Round(2)
	return Quote{
		Subtotal:    subtotal,
		PlatformFee: fee,
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax),
	}, nil
}

// Cents converts a decimal dollar amount to integer cents, as required by
// the payment provider's unit_amount fields.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

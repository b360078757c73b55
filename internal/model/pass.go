package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PassType is a purchasable credit bundle scoped to an organization rather
// than to a single event.
type PassType struct {
	ID             uint64          `json:"id"`              // pass_types.id
	OrganizationID uint64          `json:"organization_id"` // pass_types.organization_id
	Name           string          `json:"name"`            // pass_types.name
	Description    *string         `json:"description"`     // pass_types.description (nullable)
	Price          decimal.Decimal `json:"price"`           // pass_types.price
	CreditsTotal   uint32          `json:"credits_total"`   // pass_types.credits_total
	ValidityDays   uint32          `json:"validity_days"`   // pass_types.validity_days
	IsActive       bool            `json:"is_active"`       // pass_types.is_active
	CreatedAt      time.Time       `json:"created_at"`      // pass_types.created_at
}

// UserPass is a redeemable grant created by pass fulfillment, one row per
// purchased unit. Grants carry the buyer email as the correlation key; a
// signed-in buyer claims them by the verified email in their token.
// CreditsRemaining is decremented by redemption flows outside this service.
type UserPass struct {
	ID               uint64    `json:"id"`                // user_passes.id
	OrderID          uint64    `json:"order_id"`          // user_passes.order_id
	PassTypeID       uint64    `json:"pass_type_id"`      // user_passes.pass_type_id
	BuyerEmail       string    `json:"buyer_email"`       // user_passes.buyer_email
	CreditsTotal     uint32    `json:"credits_total"`     // user_passes.credits_total
	CreditsRemaining uint32    `json:"credits_remaining"` // user_passes.credits_remaining
	PurchaseDate     time.Time `json:"purchase_date"`     // user_passes.purchase_date
	ExpiryDate       time.Time `json:"expiry_date"`       // user_passes.expiry_date
	IsActive         bool      `json:"is_active"`         // user_passes.is_active
	CreatedAt        time.Time `json:"created_at"`        // user_passes.created_at
	UpdatedAt        time.Time `json:"updated_at"`        // user_passes.updated_at
}

// ClassPackage is the class-credit analogue of PassType: a bundle of class
// credits sold by a studio.
type ClassPackage struct {
	ID             uint64          `json:"id"`              // class_packages.id
	OrganizationID uint64          `json:"organization_id"` // class_packages.organization_id
	Name           string          `json:"name"`            // class_packages.name
	Description    *string         `json:"description"`     // class_packages.description (nullable)
	Credits        uint32          `json:"credits"`         // class_packages.credits
	Price          decimal.Decimal `json:"price"`           // class_packages.price
	ValidityDays   uint32          `json:"validity_days"`   // class_packages.validity_days
	IsActive       bool            `json:"is_active"`       // class_packages.is_active
	CreatedAt      time.Time       `json:"created_at"`      // class_packages.created_at
}

// PackageEnrollment is the grant created by package fulfillment.
type PackageEnrollment struct {
	ID               uint64     `json:"id"`                // package_enrollments.id
	OrderID          uint64     `json:"order_id"`          // package_enrollments.order_id
	PackageID        uint64     `json:"package_id"`        // package_enrollments.package_id
	BuyerEmail       string     `json:"buyer_email"`       // package_enrollments.buyer_email
	CreditsTotal     uint32     `json:"credits_total"`     // package_enrollments.credits_total
	CreditsRemaining uint32     `json:"credits_remaining"` // package_enrollments.credits_remaining
	ExpiryDate       *time.Time `json:"expiry_date"`       // package_enrollments.expiry_date (nullable)
	Status           string     `json:"status"`            // package_enrollments.status
	CreatedAt        time.Time  `json:"created_at"`        // package_enrollments.created_at
}

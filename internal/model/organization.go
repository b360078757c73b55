package model

import "time"

// Organization is a tenant: a dance school or event promoter. Every event,
// catalog item and order belongs to exactly one organization. Organizations
// are never hard-deleted; is_active gates public visibility.
type Organization struct {
	ID         uint64    `json:"id"`          // organizations.id
	Name       string    `json:"name"`        // organizations.name
	Subdomain  string    `json:"subdomain"`   // organizations.subdomain (unique)
	Email      *string   `json:"email"`       // organizations.email (nullable)
	Phone      *string   `json:"phone"`       // organizations.phone (nullable)
	City       *string   `json:"city"`        // organizations.city (nullable)
	Province   *string   `json:"province"`    // organizations.province (nullable)
	Country    *string   `json:"country"`     // organizations.country (nullable)
	BrandColor string    `json:"brand_color"` // organizations.brand_color
	IsActive   bool      `json:"is_active"`   // organizations.is_active
	CreatedAt  time.Time `json:"created_at"`  // organizations.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // organizations.updated_at
}

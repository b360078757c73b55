package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event status values. Transitions flow draft -> published -> cancelled;
// a cancelled event is never republished.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
)

// Event is a dated, located happening owned by one organization.
type Event struct {
	ID             uint64     `json:"id"`              // events.id
	OrganizationID uint64     `json:"organization_id"` // events.organization_id
	Title          string     `json:"title"`           // events.title
	Description    *string    `json:"description"`     // events.description (nullable)
	Category       *string    `json:"category"`        // events.category (nullable)
	StartDatetime  time.Time  `json:"start_datetime"`  // events.start_datetime (UTC)
	EndDatetime    *time.Time `json:"end_datetime"`    // events.end_datetime (nullable)
	VenueName      *string    `json:"venue_name"`      // events.venue_name (nullable)
	Address        *string    `json:"address"`         // events.address (nullable)
	City           *string    `json:"city"`            // events.city (nullable)
	Capacity       *uint32    `json:"capacity"`        // events.capacity (nullable)
	Status         string     `json:"status"`          // events.status
	CreatedAt      time.Time  `json:"created_at"`      // events.created_at
	UpdatedAt      time.Time  `json:"updated_at"`      // events.updated_at
}

// TicketType is a priced tier of admission to one event. QuantitySold only
// ever increases, and only through fulfillment's conditional update, so
// quantity_sold <= quantity_available holds at all times.
type TicketType struct {
	ID                uint64          `json:"id"`                 // ticket_types.id
	EventID           uint64          `json:"event_id"`           // ticket_types.event_id
	Name              string          `json:"name"`               // ticket_types.name
	Description       *string         `json:"description"`        // ticket_types.description (nullable)
	Price             decimal.Decimal `json:"price"`              // ticket_types.price
	QuantityAvailable uint32          `json:"quantity_available"` // ticket_types.quantity_available
	QuantitySold      uint32          `json:"quantity_sold"`      // ticket_types.quantity_sold
	SaleStartDate     *time.Time      `json:"sale_start_date"`    // ticket_types.sale_start_date (nullable)
	SaleEndDate       *time.Time      `json:"sale_end_date"`      // ticket_types.sale_end_date (nullable)
	IsActive          bool            `json:"is_active"`          // ticket_types.is_active
	SortOrder         int             `json:"sort_order"`         // ticket_types.sort_order
	CreatedAt         time.Time       `json:"created_at"`         // ticket_types.created_at
	UpdatedAt         time.Time       `json:"updated_at"`         // ticket_types.updated_at
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/groovegrid/groovegrid/internal/model"
)

// eventExport is the portable shape of one event and its ticket types. IDs
// and timestamps are omitted on purpose: imports always insert new rows.
type eventExport struct {
	Title         string             `json:"title"`
	Description   *string            `json:"description,omitempty"`
	Category      *string            `json:"category,omitempty"`
	StartDatetime time.Time          `json:"start_datetime"`
	EndDatetime   *time.Time         `json:"end_datetime,omitempty"`
	VenueName     *string            `json:"venue_name,omitempty"`
	Address       *string            `json:"address,omitempty"`
	City          *string            `json:"city,omitempty"`
	Capacity      *uint32            `json:"capacity,omitempty"`
	TicketTypes   []ticketTypeExport `json:"ticket_types,omitempty"`
}

type ticketTypeExport struct {
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable uint32          `json:"quantity_available"`
	SortOrder         int             `json:"sort_order"`
}

// ExportEvents handles GET /v1/events/export, dumping the organizer's full
// event catalog as a JSON array.
func (h *OwnerHandler) ExportEvents(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	events, err := h.Events.ListByOrganization(ctx, orgID)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]eventExport, 0, len(events))
	for _, e := range events {
		exp := eventExport{
			Title:         e.Title,
			Description:   e.Description,
			Category:      e.Category,
			StartDatetime: e.StartDatetime,
			EndDatetime:   e.EndDatetime,
			VenueName:     e.VenueName,
			Address:       e.Address,
			City:          e.City,
			Capacity:      e.Capacity,
		}
		types, err := h.TicketTypes.ListByEvent(ctx, e.ID)
		if err != nil {
			return repoError(c, err)
		}
		for _, tt := range types {
			exp.TicketTypes = append(exp.TicketTypes, ticketTypeExport{
				Name:              tt.Name,
				Description:       tt.Description,
				Price:             tt.Price,
				QuantityAvailable: tt.QuantityAvailable,
				SortOrder:         tt.SortOrder,
			})
		}
		out = append(out, exp)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ImportEvents handles POST /v1/events/import. Every entry inserts as a new
// draft event; nothing is matched or merged against existing rows.
func (h *OwnerHandler) ImportEvents(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Items []eventExport `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items are required"})
	}

	ctx := c.Request().Context()
	imported := 0
	var failures []echo.Map
	for i, exp := range body.Items {
		if strings.TrimSpace(exp.Title) == "" || exp.StartDatetime.IsZero() {
			failures = append(failures, echo.Map{"index": i, "error": "title and start_datetime are required"})
			continue
		}
		e := &model.Event{
			OrganizationID: orgID,
			Title:          strings.TrimSpace(exp.Title),
			Description:    exp.Description,
			Category:       exp.Category,
			StartDatetime:  exp.StartDatetime.UTC(),
			EndDatetime:    exp.EndDatetime,
			VenueName:      exp.VenueName,
			Address:        exp.Address,
			City:           exp.City,
			Capacity:       exp.Capacity,
		}
		if err := h.Events.Create(ctx, e); err != nil {
			failures = append(failures, echo.Map{"index": i, "error": "insert failed"})
			continue
		}
		for _, tt := range exp.TicketTypes {
			t := &model.TicketType{
				EventID:           e.ID,
				Name:              tt.Name,
				Description:       tt.Description,
				Price:             tt.Price,
				QuantityAvailable: tt.QuantityAvailable,
				IsActive:          true,
				SortOrder:         tt.SortOrder,
			}
			if err := h.TicketTypes.Create(ctx, t); err != nil {
				failures = append(failures, echo.Map{"index": i, "error": "ticket type insert failed"})
			}
		}
		imported++
	}
	return c.JSON(http.StatusOK, echo.Map{"imported": imported, "failures": failures})
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// OwnerHandler bundles the repositories organizers use to manage their
// catalog: events, ticket tiers, passes, packages and courses.
type OwnerHandler struct {
	Events      *repository.EventRepo
	TicketTypes *repository.TicketTypeRepo
	PassTypes   *repository.PassTypeRepo
	Packages    *repository.PackageRepo
	Courses     *repository.CourseRepo
	Orders      *repository.OrderRepo
	Tickets     *repository.TicketRepo
}

// NewOwnerHandler constructs an OwnerHandler and panics on a nil dependency.
func NewOwnerHandler(events *repository.EventRepo, ticketTypes *repository.TicketTypeRepo,
	passTypes *repository.PassTypeRepo, packages *repository.PackageRepo,
	courses *repository.CourseRepo, orders *repository.OrderRepo, tickets *repository.TicketRepo) *OwnerHandler {
	if events == nil || ticketTypes == nil || passTypes == nil || packages == nil || courses == nil || orders == nil || tickets == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{
		Events:      events,
		TicketTypes: ticketTypes,
		PassTypes:   passTypes,
		Packages:    packages,
		Courses:     courses,
		Orders:      orders,
		Tickets:     tickets,
	}
}

type eventRequest struct {
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	VenueName     *string    `json:"venue_name"`
	Address       *string    `json:"address"`
	City          *string    `json:"city"`
	Capacity      *uint32    `json:"capacity"`
}

func (r *eventRequest) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title is required"
	}
	if r.StartDatetime.IsZero() {
		return "start_datetime is required"
	}
	if r.EndDatetime != nil && r.EndDatetime.Before(r.StartDatetime) {
		return "end_datetime precedes start_datetime"
	}
	return ""
}

// CreateEvent handles POST /v1/owner/events.
func (h *OwnerHandler) CreateEvent(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body eventRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	e := &model.Event{
		OrganizationID: orgID,
		Title:          strings.TrimSpace(body.Title),
		Description:    body.Description,
		Category:       body.Category,
		StartDatetime:  body.StartDatetime.UTC(),
		EndDatetime:    body.EndDatetime,
		VenueName:      body.VenueName,
		Address:        body.Address,
		City:           body.City,
		Capacity:       body.Capacity,
	}
	if err := h.Events.Create(c.Request().Context(), e); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// ListEvents handles GET /v1/owner/events.
func (h *OwnerHandler) ListEvents(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Events.ListByOrganization(c.Request().Context(), orgID)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/owner/events/:id.
func (h *OwnerHandler) GetEvent(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	e, err := h.Events.GetOwned(c.Request().Context(), id, orgID)
	if err != nil {
		return repoError(c, err)
	}
	types, err := h.TicketTypes.ListByEvent(c.Request().Context(), e.ID)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": e, "ticket_types": types})
}

// UpdateEvent handles PUT /v1/owner/events/:id.
func (h *OwnerHandler) UpdateEvent(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body eventRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	e := &model.Event{
		ID:            id,
		Title:         strings.TrimSpace(body.Title),
		Description:   body.Description,
		Category:      body.Category,
		StartDatetime: body.StartDatetime.UTC(),
		EndDatetime:   body.EndDatetime,
		VenueName:     body.VenueName,
		Address:       body.Address,
		City:          body.City,
		Capacity:      body.Capacity,
	}
	if err := h.Events.Update(c.Request().Context(), orgID, e); err != nil {
		return repoError(c, err)
	}
	updated, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// PublishEvent handles POST /v1/owner/events/:id/publish.
func (h *OwnerHandler) PublishEvent(c echo.Context) error {
	return h.setEventStatus(c, model.EventStatusPublished)
}

// CancelEvent handles POST /v1/owner/events/:id/cancel.
func (h *OwnerHandler) CancelEvent(c echo.Context) error {
	return h.setEventStatus(c, model.EventStatusCancelled)
}

func (h *OwnerHandler) setEventStatus(c echo.Context, status string) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Events.SetStatus(c.Request().Context(), id, orgID, status); err != nil {
		if err == repository.ErrNoChange {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event is cancelled"})
		}
		return repoError(c, err)
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// DeleteEvent handles DELETE /v1/owner/events/:id. Only drafts delete;
// published events are cancelled instead so order history survives.
func (h *OwnerHandler) DeleteEvent(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Events.Delete(c.Request().Context(), id, orgID); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type ticketTypeRequest struct {
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable uint32          `json:"quantity_available"`
	SaleStartDate     *time.Time      `json:"sale_start_date"`
	SaleEndDate       *time.Time      `json:"sale_end_date"`
	IsActive          *bool           `json:"is_active"`
	SortOrder         int             `json:"sort_order"`
}

func (r *ticketTypeRequest) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.Price.IsNegative() {
		return "price cannot be negative"
	}
	if r.QuantityAvailable == 0 {
		return "quantity_available must be positive"
	}
	return ""
}

// CreateTicketType handles POST /v1/owner/events/:id/ticket-types.
func (h *OwnerHandler) CreateTicketType(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Events.GetOwned(c.Request().Context(), eventID, orgID); err != nil {
		return repoError(c, err)
	}
	var body ticketTypeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	tt := &model.TicketType{
		EventID:           eventID,
		Name:              strings.TrimSpace(body.Name),
		Description:       body.Description,
		Price:             body.Price,
		QuantityAvailable: body.QuantityAvailable,
		SaleStartDate:     body.SaleStartDate,
		SaleEndDate:       body.SaleEndDate,
		IsActive:          active,
		SortOrder:         body.SortOrder,
	}
	if err := h.TicketTypes.Create(c.Request().Context(), tt); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, tt)
}

// UpdateTicketType handles PUT /v1/owner/ticket-types/:id.
func (h *OwnerHandler) UpdateTicketType(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	existing, err := h.TicketTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if _, err := h.Events.GetOwned(ctx, existing.EventID, orgID); err != nil {
		return repoError(c, err)
	}
	var body ticketTypeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	// Shrinking capacity below what already sold would break the sold
	// counter invariant.
	if body.QuantityAvailable < existing.QuantitySold {
		return c.JSON(http.StatusConflict, echo.Map{"error": "quantity_available below quantity_sold"})
	}
	active := existing.IsActive
	if body.IsActive != nil {
		active = *body.IsActive
	}
	existing.Name = strings.TrimSpace(body.Name)
	existing.Description = body.Description
	existing.Price = body.Price
	existing.QuantityAvailable = body.QuantityAvailable
	existing.SaleStartDate = body.SaleStartDate
	existing.SaleEndDate = body.SaleEndDate
	existing.IsActive = active
	existing.SortOrder = body.SortOrder
	if err := h.TicketTypes.Update(ctx, existing); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

// DeleteTicketType handles DELETE /v1/owner/ticket-types/:id.
func (h *OwnerHandler) DeleteTicketType(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	existing, err := h.TicketTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if _, err := h.Events.GetOwned(ctx, existing.EventID, orgID); err != nil {
		return repoError(c, err)
	}
	if err := h.TicketTypes.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListOrders handles GET /v1/owner/orders.
func (h *OwnerHandler) ListOrders(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Orders.ListByOrganization(c.Request().Context(), orgID, 0)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetOrder handles GET /v1/owner/orders/:id, returning one order with its
// line items and any tickets minted for it.
func (h *OwnerHandler) GetOrder(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	// Orders from other tenants look identical to missing ones.
	if order.OrganizationID == nil || *order.OrganizationID != orgID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	items, err := h.Orders.ListItems(ctx, order.ID)
	if err != nil {
		return repoError(c, err)
	}
	tickets, err := h.Tickets.ListByOrder(ctx, order.ID)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order, "items": items, "tickets": tickets})
}

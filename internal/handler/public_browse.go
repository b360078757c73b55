package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: organization
// pages, published events and purchasable catalogs.
type PublicHandler struct {
	Orgs        *repository.OrganizationRepo
	Events      *repository.EventRepo
	TicketTypes *repository.TicketTypeRepo
	PassTypes   *repository.PassTypeRepo
	Packages    *repository.PackageRepo
	Courses     *repository.CourseRepo
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(orgs *repository.OrganizationRepo, events *repository.EventRepo,
	ticketTypes *repository.TicketTypeRepo, passTypes *repository.PassTypeRepo,
	packages *repository.PackageRepo, courses *repository.CourseRepo) *PublicHandler {
	return &PublicHandler{
		Orgs:        orgs,
		Events:      events,
		TicketTypes: ticketTypes,
		PassTypes:   passTypes,
		Packages:    packages,
		Courses:     courses,
	}
}

// GetOrganization handles GET /v1/organizations/:subdomain.
func (h *PublicHandler) GetOrganization(c echo.Context) error {
	org, err := h.Orgs.GetBySubdomain(c.Request().Context(), c.Param("subdomain"))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// ListEvents handles GET /v1/organizations/:subdomain/events, returning the
// tenant's published upcoming events.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	org, err := h.Orgs.GetBySubdomain(ctx, c.Param("subdomain"))
	if err != nil {
		return repoError(c, err)
	}
	items, err := h.Events.ListPublished(ctx, org.ID)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/events/:id with its on-sale ticket types.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if e.Status != model.EventStatusPublished {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	all, err := h.TicketTypes.ListByEvent(ctx, e.ID)
	if err != nil {
		return repoError(c, err)
	}
	types := make([]model.TicketType, 0, len(all))
	for _, tt := range all {
		if tt.IsActive {
			types = append(types, tt)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"event": e, "ticket_types": types})
}

// ListPassTypes handles GET /v1/organizations/:subdomain/pass-types.
func (h *PublicHandler) ListPassTypes(c echo.Context) error {
	ctx := c.Request().Context()
	org, err := h.Orgs.GetBySubdomain(ctx, c.Param("subdomain"))
	if err != nil {
		return repoError(c, err)
	}
	items, err := h.PassTypes.ListByOrganization(ctx, org.ID, true)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListPackages handles GET /v1/organizations/:subdomain/packages.
func (h *PublicHandler) ListPackages(c echo.Context) error {
	ctx := c.Request().Context()
	org, err := h.Orgs.GetBySubdomain(ctx, c.Param("subdomain"))
	if err != nil {
		return repoError(c, err)
	}
	items, err := h.Packages.ListByOrganization(ctx, org.ID, true)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListCourses handles GET /v1/organizations/:subdomain/courses.
func (h *PublicHandler) ListCourses(c echo.Context) error {
	ctx := c.Request().Context()
	org, err := h.Orgs.GetBySubdomain(ctx, c.Param("subdomain"))
	if err != nil {
		return repoError(c, err)
	}
	items, err := h.Courses.ListByOrganization(ctx, org.ID, true)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

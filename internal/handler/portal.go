package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/groovegrid/groovegrid/internal/repository"
)

// PortalHandler lets signed-in buyers claim the grants tied to their
// verified email: guest checkout writes grants keyed by buyer_email, and
// the portal surfaces them once the buyer authenticates with that address.
type PortalHandler struct {
	Orders   *repository.OrderRepo
	Tickets  *repository.TicketRepo
	Passes   *repository.UserPassRepo
	Packages *repository.PackageRepo
	Courses  *repository.CourseRepo
}

// NewPortalHandler constructs a PortalHandler.
func NewPortalHandler(orders *repository.OrderRepo, tickets *repository.TicketRepo,
	passes *repository.UserPassRepo, packages *repository.PackageRepo, courses *repository.CourseRepo) *PortalHandler {
	return &PortalHandler{Orders: orders, Tickets: tickets, Passes: passes, Packages: packages, Courses: courses}
}

// ListOrders handles GET /v1/portal/orders.
func (h *PortalHandler) ListOrders(c echo.Context) error {
	email, err := getEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Orders.ListByEmail(c.Request().Context(), email)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListTickets handles GET /v1/portal/tickets.
func (h *PortalHandler) ListTickets(c echo.Context) error {
	email, err := getEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Tickets.ListByEmail(c.Request().Context(), email)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListPasses handles GET /v1/portal/passes.
func (h *PortalHandler) ListPasses(c echo.Context) error {
	email, err := getEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Passes.ListByEmail(c.Request().Context(), email)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListPackages handles GET /v1/portal/packages.
func (h *PortalHandler) ListPackages(c echo.Context) error {
	email, err := getEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Packages.ListEnrollmentsByEmail(c.Request().Context(), email)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListEnrollments handles GET /v1/portal/enrollments.
func (h *PortalHandler) ListEnrollments(c echo.Context) error {
	email, err := getEmail(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Courses.ListEnrollmentsByEmail(c.Request().Context(), email)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/monitoring"
	"github.com/groovegrid/groovegrid/internal/payments"
	"github.com/groovegrid/groovegrid/internal/pricing"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// maxCheckoutQuantity caps a single line. Bigger carts are almost always a
// client bug or an abuse attempt.
const maxCheckoutQuantity = 20

// CheckoutCatalog resolves catalog items to server-side prices. Client
// submitted prices are ignored entirely.
type CheckoutCatalog interface {
	TicketType(ctx context.Context, id uint64) (*model.TicketType, error)
	Event(ctx context.Context, id uint64) (*model.Event, error)
	PassType(ctx context.Context, id uint64) (*model.PassType, error)
	Package(ctx context.Context, id uint64) (*model.ClassPackage, error)
	Course(ctx context.Context, id uint64) (*model.Course, error)
}

// PendingStore persists the checkout intent after session creation and
// resolves it again for the success-page status poll.
type PendingStore interface {
	Create(ctx context.Context, p *repository.PendingOrder) error
	GetBySessionID(ctx context.Context, sessionID string) (*repository.PendingOrder, error)
}

// OrderReader resolves a fulfilled order for the success-page status poll.
type OrderReader interface {
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
}

// CheckoutHandler builds priced carts and Stripe sessions for all four
// purchase flows, and reports session status back to the success page.
type CheckoutHandler struct {
	catalog  CheckoutCatalog
	sessions payments.SessionCreator
	pending  PendingStore
	orders   OrderReader
}

// NewCheckoutHandler wires a checkout handler. pending and orders may be nil
// in tests.
func NewCheckoutHandler(catalog CheckoutCatalog, sessions payments.SessionCreator, pending PendingStore, orders OrderReader) *CheckoutHandler {
	return &CheckoutHandler{catalog: catalog, sessions: sessions, pending: pending, orders: orders}
}

type checkoutItemRequest struct {
	TicketTypeID uint64 `json:"ticket_type_id"`
	PassTypeID   uint64 `json:"pass_type_id"`
	PackageID    uint64 `json:"package_id"`
	Quantity     int64  `json:"quantity"`
}

type checkoutRequest struct {
	PurchaseType   string                `json:"purchase_type"`
	OrganizationID uint64                `json:"organization_id"`
	EventID        uint64                `json:"event_id"`
	BuyerEmail     string                `json:"buyer_email"`
	BuyerName      string                `json:"buyer_name"`
	Items          []checkoutItemRequest `json:"items"`
}

// Checkout handles POST /v1/checkout for ticket, pass and package carts.
// Course enrollment has its own route because the cart is implicit.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	kind, err := payments.ParsePurchaseKind(req.PurchaseType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase_type"})
	}
	if kind == payments.KindCourse {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "use the course enroll endpoint"})
	}
	if msg := validateBuyer(req.BuyerEmail, req.BuyerName); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items are required"})
	}

	ctx := c.Request().Context()
	intent := &payments.Intent{
		Kind:           kind,
		OrganizationID: req.OrganizationID,
		BuyerEmail:     strings.ToLower(strings.TrimSpace(req.BuyerEmail)),
		BuyerName:      strings.TrimSpace(req.BuyerName),
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 || item.Quantity > maxCheckoutQuantity {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quantity"})
		}
		line, status, msg := h.resolveLine(ctx, kind, item, intent)
		if msg != "" {
			return c.JSON(status, echo.Map{"error": msg})
		}
		intent.Items = append(intent.Items, *line)
	}

	return h.createSession(c, intent)
}

// resolveLine turns one request item into a priced line, enforcing that the
// referenced catalog entry exists, is purchasable and matches the kind.
func (h *CheckoutHandler) resolveLine(ctx context.Context, kind payments.PurchaseKind, item checkoutItemRequest, intent *payments.Intent) (*payments.LineItem, int, string) {
	switch kind {
	case payments.KindTicket:
		if item.TicketTypeID == 0 {
			return nil, http.StatusBadRequest, "ticket_type_id is required"
		}
		tt, err := h.catalog.TicketType(ctx, item.TicketTypeID)
		if err != nil {
			return nil, http.StatusNotFound, "ticket type not found"
		}
		if !tt.IsActive {
			return nil, http.StatusConflict, "ticket type is not on sale"
		}
		ev, err := h.catalog.Event(ctx, tt.EventID)
		if err != nil || ev.Status != model.EventStatusPublished {
			return nil, http.StatusConflict, "event is not published"
		}
		// Availability is rechecked atomically at fulfillment; this check
		// just fails the obvious case before charging anyone.
		if tt.QuantitySold+uint32(item.Quantity) > tt.QuantityAvailable {
			return nil, http.StatusConflict, "not enough tickets available"
		}
		intent.EventID = tt.EventID
		if intent.OrganizationID == 0 {
			intent.OrganizationID = ev.OrganizationID
		}
		return &payments.LineItem{TicketTypeID: tt.ID, Name: ev.Title + " - " + tt.Name, UnitPrice: tt.Price, Quantity: item.Quantity}, 0, ""

	case payments.KindPass:
		if item.PassTypeID == 0 {
			return nil, http.StatusBadRequest, "pass_type_id is required"
		}
		pt, err := h.catalog.PassType(ctx, item.PassTypeID)
		if err != nil {
			return nil, http.StatusNotFound, "pass type not found"
		}
		if !pt.IsActive {
			return nil, http.StatusConflict, "pass type is not on sale"
		}
		if intent.OrganizationID == 0 {
			intent.OrganizationID = pt.OrganizationID
		}
		return &payments.LineItem{PassTypeID: pt.ID, Name: pt.Name, UnitPrice: pt.Price, Quantity: item.Quantity}, 0, ""

	case payments.KindPackage:
		if item.PackageID == 0 {
			return nil, http.StatusBadRequest, "package_id is required"
		}
		pkg, err := h.catalog.Package(ctx, item.PackageID)
		if err != nil {
			return nil, http.StatusNotFound, "package not found"
		}
		if !pkg.IsActive {
			return nil, http.StatusConflict, "package is not on sale"
		}
		if intent.OrganizationID == 0 {
			intent.OrganizationID = pkg.OrganizationID
		}
		return &payments.LineItem{PackageID: pkg.ID, Name: pkg.Name, UnitPrice: pkg.Price, Quantity: item.Quantity}, 0, ""
	}
	return nil, http.StatusBadRequest, "invalid purchase_type"
}

// EnrollCourse handles POST /v1/courses/:id/enroll. The cart is the course
// itself with quantity 1.
func (h *CheckoutHandler) EnrollCourse(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		BuyerEmail string `json:"buyer_email"`
		BuyerName  string `json:"buyer_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateBuyer(req.BuyerEmail, req.BuyerName); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx := c.Request().Context()
	course, err := h.catalog.Course(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}
	if course.Status != "published" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "course is not open for enrollment"})
	}

	intent := &payments.Intent{
		Kind:           payments.KindCourse,
		OrganizationID: course.OrganizationID,
		BuyerEmail:     strings.ToLower(strings.TrimSpace(req.BuyerEmail)),
		BuyerName:      strings.TrimSpace(req.BuyerName),
		Items: []payments.LineItem{{
			CourseID:  course.ID,
			Name:      course.Title,
			UnitPrice: course.Price,
			Quantity:  1,
		}},
	}
	return h.createSession(c, intent)
}

// SessionStatus handles GET /v1/checkout/sessions/:session_id. The success
// page polls it while the webhook races the redirect: fulfillment may land
// seconds after the buyer does.
func (h *CheckoutHandler) SessionStatus(c echo.Context) error {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}
	ctx := c.Request().Context()

	if h.orders != nil {
		order, err := h.orders.GetBySessionID(ctx, sessionID)
		if err == nil {
			return c.JSON(http.StatusOK, echo.Map{"status": "completed", "order": order})
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return repoError(c, err)
		}
	}
	if h.pending != nil {
		p, err := h.pending.GetBySessionID(ctx, sessionID)
		if err == nil {
			return c.JSON(http.StatusOK, echo.Map{"status": p.Status})
		}
		if !errors.Is(err, repository.ErrPendingOrderNotFound) {
			return repoError(c, err)
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown session"})
}

// createSession prices the cart, creates the Stripe session, and records
// the durable pending intent. The pending insert is best effort: the
// session metadata carries the same intent as a fallback.
func (h *CheckoutHandler) createSession(c echo.Context, intent *payments.Intent) error {
	lines := make([]pricing.LineItem, len(intent.Items))
	for i, it := range intent.Items {
		lines[i] = pricing.LineItem{UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	quote, err := pricing.Price(lines)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty cart"})
	}
	intent.Subtotal = quote.Subtotal
	intent.Fees = quote.PlatformFee
	intent.Tax = quote.Tax
	intent.Total = quote.Total

	ctx := c.Request().Context()
	sess, err := h.sessions.CreateSession(ctx, intent, quote)
	if err != nil {
		c.Logger().Errorf("checkout: create session: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
	}
	monitoring.CheckoutSessions.WithLabelValues(string(intent.Kind)).Inc()

	if h.pending != nil {
		if err := h.pending.Create(ctx, pendingFromIntent(sess.ID, intent)); err != nil {
			c.Logger().Warnf("checkout: persist pending order for session %s: %v", sess.ID, err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"session_id": sess.ID,
		"url":        sess.URL,
		"subtotal":   quote.Subtotal,
		"fees":       quote.PlatformFee,
		"tax":        quote.Tax,
		"total":      quote.Total,
	})
}

func pendingFromIntent(sessionID string, intent *payments.Intent) *repository.PendingOrder {
	itemsJSON, _ := json.Marshal(intent.Items)
	p := &repository.PendingOrder{
		StripeSessionID: sessionID,
		PurchaseKind:    string(intent.Kind),
		BuyerEmail:      intent.BuyerEmail,
		BuyerName:       intent.BuyerName,
		ItemsJSON:       string(itemsJSON),
		Subtotal:        intent.Subtotal,
		Fees:            intent.Fees,
		Tax:             intent.Tax,
		Total:           intent.Total,
	}
	if intent.OrganizationID != 0 {
		p.OrganizationID = &intent.OrganizationID
	}
	if intent.EventID != 0 {
		p.EventID = &intent.EventID
	}
	return p
}

func validateBuyer(email, name string) string {
	if strings.TrimSpace(name) == "" {
		return "buyer_name is required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return "buyer_email is invalid"
	}
	return ""
}

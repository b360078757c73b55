package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/payments"
	"github.com/groovegrid/groovegrid/internal/pricing"
	"github.com/groovegrid/groovegrid/internal/repository"
)

type fakeCatalog struct {
	ticketTypes map[uint64]*model.TicketType
	events      map[uint64]*model.Event
	passTypes   map[uint64]*model.PassType
	packages    map[uint64]*model.ClassPackage
	courses     map[uint64]*model.Course
}

func (f *fakeCatalog) TicketType(ctx context.Context, id uint64) (*model.TicketType, error) {
	if tt, ok := f.ticketTypes[id]; ok {
		return tt, nil
	}
	return nil, repository.ErrTicketTypeNotFound
}

func (f *fakeCatalog) Event(ctx context.Context, id uint64) (*model.Event, error) {
	if ev, ok := f.events[id]; ok {
		return ev, nil
	}
	return nil, repository.ErrEventNotFound
}

func (f *fakeCatalog) PassType(ctx context.Context, id uint64) (*model.PassType, error) {
	if pt, ok := f.passTypes[id]; ok {
		return pt, nil
	}
	return nil, repository.ErrPassTypeNotFound
}

func (f *fakeCatalog) Package(ctx context.Context, id uint64) (*model.ClassPackage, error) {
	if p, ok := f.packages[id]; ok {
		return p, nil
	}
	return nil, repository.ErrPackageNotFound
}

func (f *fakeCatalog) Course(ctx context.Context, id uint64) (*model.Course, error) {
	if cr, ok := f.courses[id]; ok {
		return cr, nil
	}
	return nil, repository.ErrCourseNotFound
}

type fakeSessionCreator struct {
	err    error
	intent *payments.Intent
	quote  pricing.Quote
}

func (f *fakeSessionCreator) CreateSession(ctx context.Context, intent *payments.Intent, quote pricing.Quote) (*payments.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.intent = intent
	f.quote = quote
	return &payments.Session{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

type fakePendingStore struct {
	rows []*repository.PendingOrder
}

func (f *fakePendingStore) Create(ctx context.Context, p *repository.PendingOrder) error {
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakePendingStore) GetBySessionID(ctx context.Context, sessionID string) (*repository.PendingOrder, error) {
	for _, p := range f.rows {
		if p.StripeSessionID == sessionID {
			return p, nil
		}
	}
	return nil, repository.ErrPendingOrderNotFound
}

type fakeOrderReader struct {
	orders map[string]*model.Order
}

func (f *fakeOrderReader) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	if o, ok := f.orders[sessionID]; ok {
		return o, nil
	}
	return nil, repository.ErrOrderNotFound
}

func salsaCatalog() *fakeCatalog {
	return &fakeCatalog{
		ticketTypes: map[uint64]*model.TicketType{
			3: {ID: 3, EventID: 42, Name: "General", Price: decimal.RequireFromString("35.00"),
				QuantityAvailable: 100, QuantitySold: 10, IsActive: true},
			4: {ID: 4, EventID: 42, Name: "VIP", Price: decimal.RequireFromString("60.00"),
				QuantityAvailable: 10, QuantitySold: 10, IsActive: true},
			5: {ID: 5, EventID: 42, Name: "Early Bird", Price: decimal.RequireFromString("25.00"),
				QuantityAvailable: 100, IsActive: false},
		},
		events: map[uint64]*model.Event{
			42: {ID: 42, OrganizationID: 7, Title: "Salsa Night", Status: model.EventStatusPublished},
		},
		passTypes: map[uint64]*model.PassType{
			9: {ID: 9, OrganizationID: 7, Name: "10-Class Pass", Price: decimal.RequireFromString("120.00"), IsActive: true},
		},
		courses: map[uint64]*model.Course{
			21: {ID: 21, OrganizationID: 7, Title: "Bachata Foundations", Price: decimal.RequireFromString("200.00"), Status: "published"},
			22: {ID: 22, OrganizationID: 7, Title: "Draft Course", Price: decimal.RequireFromString("150.00"), Status: "draft"},
		},
	}
}

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestCheckoutTicketCart(t *testing.T) {
	sessions := &fakeSessionCreator{}
	pending := &fakePendingStore{}
	h := NewCheckoutHandler(salsaCatalog(), sessions, pending, nil)

	c, rec := postJSON(t, "/v1/checkout", `{
		"purchase_type": "ticket_purchase",
		"buyer_email": "Dancer@Example.com",
		"buyer_name": "Sam Dancer",
		"items": [{"ticket_type_id": 3, "quantity": 2}]
	}`)
	require.NoError(t, h.Checkout(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cs_test_1", resp["session_id"])
	assert.Equal(t, "70", resp["subtotal"])
	assert.Equal(t, "1.4", resp["fees"])
	assert.Equal(t, "9.28", resp["tax"])
	assert.Equal(t, "80.68", resp["total"])

	require.NotNil(t, sessions.intent)
	assert.Equal(t, payments.KindTicket, sessions.intent.Kind)
	assert.EqualValues(t, 7, sessions.intent.OrganizationID)
	assert.EqualValues(t, 42, sessions.intent.EventID)
	assert.Equal(t, "dancer@example.com", sessions.intent.BuyerEmail)
	require.Len(t, sessions.intent.Items, 1)
	assert.Equal(t, "Salsa Night - General", sessions.intent.Items[0].Name)

	require.Len(t, pending.rows, 1)
	assert.Equal(t, "cs_test_1", pending.rows[0].StripeSessionID)
	assert.Equal(t, "ticket_purchase", pending.rows[0].PurchaseKind)
}

func TestCheckoutRejectsCourseKind(t *testing.T) {
	h := NewCheckoutHandler(salsaCatalog(), &fakeSessionCreator{}, nil, nil)
	c, rec := postJSON(t, "/v1/checkout", `{
		"purchase_type": "course_enrollment",
		"buyer_email": "a@example.com",
		"buyer_name": "A",
		"items": [{"quantity": 1}]
	}`)
	require.NoError(t, h.Checkout(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "course enroll endpoint")
}

func TestCheckoutValidation(t *testing.T) {
	h := NewCheckoutHandler(salsaCatalog(), &fakeSessionCreator{}, nil, nil)
	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{"unknown kind", `{"purchase_type":"swag_purchase","buyer_email":"a@example.com","buyer_name":"A","items":[{"quantity":1}]}`,
			http.StatusBadRequest, "invalid purchase_type"},
		{"bad email", `{"purchase_type":"ticket_purchase","buyer_email":"not-an-email","buyer_name":"A","items":[{"ticket_type_id":3,"quantity":1}]}`,
			http.StatusBadRequest, "buyer_email"},
		{"missing name", `{"purchase_type":"ticket_purchase","buyer_email":"a@example.com","buyer_name":" ","items":[{"ticket_type_id":3,"quantity":1}]}`,
			http.StatusBadRequest, "buyer_name"},
		{"empty cart", `{"purchase_type":"ticket_purchase","buyer_email":"a@example.com","buyer_name":"A","items":[]}`,
			http.StatusBadRequest, "items are required"},
		{"zero quantity", `{"purchase_type":"ticket_purchase","buyer_email":"a@example.com","buyer_name":"A","items":[{"ticket_type_id":3,"quantity":0}]}`,
			http.StatusBadRequest, "invalid quantity"},
		{"oversized quantity", `{"purchase_type":"ticket_purchase","buyer_email":"a@example.com","buyer_name":"A","items":[{"ticket_type_id":3,"quantity":21}]}`,
			http.StatusBadRequest, "invalid quantity"},
		{"unknown ticket type", `{"purchase_type":"ticket_purchase","buyer_email":"a@example.com","buyer_name":"A","items":[{"ticket_type_id":99,"quantity":1}]}`,
			http.StatusNotFound, "ticket type not found"},
		{"inactive ticket type", `{"purchase_type":"ticket_purchase","buyer_email":"a@example.com","buyer_name":"A","items":[{"ticket_type_id":5,"quantity":1}]}`,
			http.StatusConflict, "not on sale"},
		{"sold out tier", `{"purchase_type":"ticket_purchase","buyer_email":"a@example.com","buyer_name":"A","items":[{"ticket_type_id":4,"quantity":1}]}`,
			http.StatusConflict, "not enough tickets"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/checkout", tc.body)
			require.NoError(t, h.Checkout(c))
			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestCheckoutSessionFailure(t *testing.T) {
	h := NewCheckoutHandler(salsaCatalog(), &fakeSessionCreator{err: errors.New("stripe down")}, nil, nil)
	c, rec := postJSON(t, "/v1/checkout", `{
		"purchase_type": "pass_purchase",
		"buyer_email": "a@example.com",
		"buyer_name": "A",
		"items": [{"pass_type_id": 9, "quantity": 1}]
	}`)
	require.NoError(t, h.Checkout(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestEnrollCourse(t *testing.T) {
	sessions := &fakeSessionCreator{}
	h := NewCheckoutHandler(salsaCatalog(), sessions, &fakePendingStore{}, nil)

	c, rec := postJSON(t, "/v1/courses/21/enroll", `{"buyer_email":"a@example.com","buyer_name":"Ana"}`)
	c.SetParamNames("id")
	c.SetParamValues("21")
	require.NoError(t, h.EnrollCourse(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, sessions.intent)
	assert.Equal(t, payments.KindCourse, sessions.intent.Kind)
	require.Len(t, sessions.intent.Items, 1)
	assert.Equal(t, "Bachata Foundations", sessions.intent.Items[0].Name)
	assert.EqualValues(t, 1, sessions.intent.Items[0].Quantity)
}

func TestEnrollCourseDraftRejected(t *testing.T) {
	h := NewCheckoutHandler(salsaCatalog(), &fakeSessionCreator{}, nil, nil)
	c, rec := postJSON(t, "/v1/courses/22/enroll", `{"buyer_email":"a@example.com","buyer_name":"Ana"}`)
	c.SetParamNames("id")
	c.SetParamValues("22")
	require.NoError(t, h.EnrollCourse(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func getSessionStatus(t *testing.T, h *CheckoutHandler, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)
	require.NoError(t, h.SessionStatus(c))
	return rec
}

func TestSessionStatusCompleted(t *testing.T) {
	orders := &fakeOrderReader{orders: map[string]*model.Order{
		"cs_done": {ID: 1, OrderNumber: "abc-123", StripeSessionID: "cs_done"},
	}}
	h := NewCheckoutHandler(salsaCatalog(), &fakeSessionCreator{}, &fakePendingStore{}, orders)

	rec := getSessionStatus(t, h, "cs_done")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
	assert.Contains(t, rec.Body.String(), "abc-123")
}

func TestSessionStatusPending(t *testing.T) {
	pending := &fakePendingStore{}
	require.NoError(t, pending.Create(context.Background(),
		&repository.PendingOrder{StripeSessionID: "cs_wait", Status: "pending"}))
	h := NewCheckoutHandler(salsaCatalog(), &fakeSessionCreator{}, pending, &fakeOrderReader{})

	rec := getSessionStatus(t, h, "cs_wait")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestSessionStatusUnknown(t *testing.T) {
	h := NewCheckoutHandler(salsaCatalog(), &fakeSessionCreator{}, &fakePendingStore{}, &fakeOrderReader{})

	rec := getSessionStatus(t, h, "cs_nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

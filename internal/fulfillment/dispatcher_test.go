package fulfillment

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/payments"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// fakeTxRunner invokes the function with a nil transaction; the fake stores
// below never touch it.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type fakeOrderStore struct {
	nextID   uint64
	sessions map[string]bool
	orders   []*model.Order
	items    []*model.OrderItem
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{nextID: 1, sessions: map[string]bool{}}
}

func (s *fakeOrderStore) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	if s.sessions[o.StripeSessionID] {
		return repository.ErrDuplicateSession
	}
	s.sessions[o.StripeSessionID] = true
	o.ID = s.nextID
	s.nextID++
	s.orders = append(s.orders, o)
	return nil
}

func (s *fakeOrderStore) AddItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	s.items = append(s.items, it)
	return nil
}

type fakePendingStore struct {
	rows      map[string]*repository.PendingOrder
	completed []string
}

func (s *fakePendingStore) GetBySessionID(ctx context.Context, id string) (*repository.PendingOrder, error) {
	if p, ok := s.rows[id]; ok {
		return p, nil
	}
	return nil, repository.ErrPendingOrderNotFound
}

func (s *fakePendingStore) MarkCompleted(ctx context.Context, id string) error {
	s.completed = append(s.completed, id)
	return nil
}

type fakeTicketTypeStore struct {
	available map[uint64]uint32
	reserved  map[uint64]uint32
}

func (s *fakeTicketTypeStore) ReserveQuantityTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	if s.reserved == nil {
		s.reserved = map[uint64]uint32{}
	}
	if s.reserved[id]+qty > s.available[id] {
		return repository.ErrSoldOut
	}
	s.reserved[id] += qty
	return nil
}

type fakeTicketStore struct {
	minted []model.Ticket
}

func (s *fakeTicketStore) CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	s.minted = append(s.minted, tickets...)
	return nil
}

type fakePassTypeStore struct {
	types map[uint64]*model.PassType
}

func (s *fakePassTypeStore) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.PassType, error) {
	if p, ok := s.types[id]; ok {
		return p, nil
	}
	return nil, repository.ErrPassTypeNotFound
}

type fakeUserPassStore struct {
	grants []model.UserPass
}

func (s *fakeUserPassStore) CreateBulkTx(ctx context.Context, tx *sql.Tx, passes []model.UserPass) error {
	s.grants = append(s.grants, passes...)
	return nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (n *fakeNotifier) OrderCompleted(ctx context.Context, order *model.Order, kind payments.PurchaseKind, items []payments.LineItem) error {
	n.calls++
	return n.err
}

func ticketSession(sessionID string) *payments.CompletedSession {
	return &payments.CompletedSession{
		SessionID:       sessionID,
		PaymentIntentID: "pi_1",
		CustomerEmail:   "dancer@example.com",
		Metadata: map[string]string{
			"purchase_type":   "ticket_purchase",
			"organization_id": "7",
			"event_id":        "42",
			"buyer_email":     "dancer@example.com",
			"buyer_name":      "Sam Dancer",
			"items":           `[{"ticket_type_id":3,"name":"Salsa Night - General","unit_price":"35","quantity":2}]`,
			"subtotal":        "70.00",
			"fees":            "1.40",
			"tax":             "9.28",
			"total":           "80.68",
		},
	}
}

func TestDispatcherFulfillsTicketOrder(t *testing.T) {
	orders := newFakeOrderStore()
	pending := &fakePendingStore{rows: map[string]*repository.PendingOrder{}}
	types := &fakeTicketTypeStore{available: map[uint64]uint32{3: 100}}
	tickets := &fakeTicketStore{}
	notifier := &fakeNotifier{}

	d := NewDispatcher(fakeTxRunner{}, orders, pending,
		map[payments.PurchaseKind]Handler{payments.KindTicket: NewTicketHandler(types, tickets)},
		notifier)

	err := d.HandleCompletedSession(context.Background(), ticketSession("cs_1"))
	require.NoError(t, err)

	require.Len(t, orders.orders, 1)
	o := orders.orders[0]
	assert.Equal(t, "cs_1", o.StripeSessionID)
	assert.NotEmpty(t, o.OrderNumber)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("80.68")))
	assert.True(t, o.Fees.Equal(decimal.RequireFromString("1.40")))
	require.NotNil(t, o.OrganizationID)
	assert.EqualValues(t, 7, *o.OrganizationID)
	require.NotNil(t, o.EventID)
	assert.EqualValues(t, 42, *o.EventID)

	require.Len(t, orders.items, 1)
	assert.Equal(t, model.ItemTypeTicket, orders.items[0].ItemType)
	assert.True(t, orders.items[0].Subtotal.Equal(decimal.RequireFromString("70")))

	require.Len(t, tickets.minted, 2)
	assert.Equal(t, "TICKET-1-3-1", tickets.minted[0].QRCode)
	assert.Equal(t, "TICKET-1-3-2", tickets.minted[1].QRCode)
	assert.EqualValues(t, 2, types.reserved[3])

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, []string{"cs_1"}, pending.completed)
}

func TestDispatcherDuplicateSessionIsNoop(t *testing.T) {
	orders := newFakeOrderStore()
	pending := &fakePendingStore{rows: map[string]*repository.PendingOrder{}}
	types := &fakeTicketTypeStore{available: map[uint64]uint32{3: 100}}
	tickets := &fakeTicketStore{}
	notifier := &fakeNotifier{}

	d := NewDispatcher(fakeTxRunner{}, orders, pending,
		map[payments.PurchaseKind]Handler{payments.KindTicket: NewTicketHandler(types, tickets)},
		notifier)

	require.NoError(t, d.HandleCompletedSession(context.Background(), ticketSession("cs_dup")))
	require.NoError(t, d.HandleCompletedSession(context.Background(), ticketSession("cs_dup")))

	assert.Len(t, orders.orders, 1)
	assert.Len(t, tickets.minted, 2)
	assert.Equal(t, 1, notifier.calls)
}

func TestDispatcherSoldOutKeepsOrderWithoutGrants(t *testing.T) {
	orders := newFakeOrderStore()
	pending := &fakePendingStore{rows: map[string]*repository.PendingOrder{}}
	types := &fakeTicketTypeStore{available: map[uint64]uint32{3: 1}}
	tickets := &fakeTicketStore{}
	notifier := &fakeNotifier{}

	d := NewDispatcher(fakeTxRunner{}, orders, pending,
		map[payments.PurchaseKind]Handler{payments.KindTicket: NewTicketHandler(types, tickets)},
		notifier)

	err := d.HandleCompletedSession(context.Background(), ticketSession("cs_soldout"))
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrSoldOut)

	// Order survives for operator follow-up; no grants, no email.
	assert.Len(t, orders.orders, 1)
	assert.Empty(t, tickets.minted)
	assert.Zero(t, notifier.calls)
}

func TestDispatcherUnknownHandlerKeepsOrder(t *testing.T) {
	orders := newFakeOrderStore()
	pending := &fakePendingStore{rows: map[string]*repository.PendingOrder{}}
	notifier := &fakeNotifier{}

	d := NewDispatcher(fakeTxRunner{}, orders, pending, map[payments.PurchaseKind]Handler{}, notifier)

	err := d.HandleCompletedSession(context.Background(), ticketSession("cs_nohandler"))
	require.NoError(t, err)
	assert.Len(t, orders.orders, 1)
	assert.Zero(t, notifier.calls)
}

func TestDispatcherNotifierFailureDoesNotFail(t *testing.T) {
	orders := newFakeOrderStore()
	pending := &fakePendingStore{rows: map[string]*repository.PendingOrder{}}
	types := &fakeTicketTypeStore{available: map[uint64]uint32{3: 100}}
	tickets := &fakeTicketStore{}
	notifier := &fakeNotifier{err: errors.New("broker down")}

	d := NewDispatcher(fakeTxRunner{}, orders, pending,
		map[payments.PurchaseKind]Handler{payments.KindTicket: NewTicketHandler(types, tickets)},
		notifier)

	err := d.HandleCompletedSession(context.Background(), ticketSession("cs_notify"))
	require.NoError(t, err)
	assert.Len(t, tickets.minted, 2)
	assert.Equal(t, 1, notifier.calls)
}

func TestDispatcherRejectsUnknownKind(t *testing.T) {
	orders := newFakeOrderStore()
	d := NewDispatcher(fakeTxRunner{}, orders, &fakePendingStore{rows: map[string]*repository.PendingOrder{}}, nil, nil)

	cs := ticketSession("cs_badkind")
	cs.Metadata["purchase_type"] = "mystery_purchase"
	err := d.HandleCompletedSession(context.Background(), cs)
	assert.ErrorIs(t, err, payments.ErrUnknownKind)
	assert.Empty(t, orders.orders)
}

func TestDispatcherPrefersPendingOrder(t *testing.T) {
	orgID := uint64(9)
	pending := &fakePendingStore{rows: map[string]*repository.PendingOrder{
		"cs_pending": {
			StripeSessionID: "cs_pending",
			OrganizationID:  &orgID,
			PurchaseKind:    "pass_purchase",
			BuyerEmail:      "dancer@example.com",
			BuyerName:       "Sam Dancer",
			ItemsJSON:       `[{"pass_type_id":5,"name":"10-Class Pass","unit_price":"120","quantity":1}]`,
			Subtotal:        decimal.RequireFromString("120.00"),
			Fees:            decimal.RequireFromString("2.40"),
			Tax:             decimal.RequireFromString("15.91"),
			Total:           decimal.RequireFromString("138.31"),
		},
	}}

	orders := newFakeOrderStore()
	passTypes := &fakePassTypeStore{types: map[uint64]*model.PassType{
		5: {ID: 5, OrganizationID: orgID, Name: "10-Class Pass", CreditsTotal: 10, ValidityDays: 30},
	}}
	userPasses := &fakeUserPassStore{}

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = orig }()

	d := NewDispatcher(fakeTxRunner{}, orders, pending,
		map[payments.PurchaseKind]Handler{payments.KindPass: NewPassHandler(passTypes, userPasses)},
		nil)

	// Metadata intentionally empty: the pending row must carry the intent.
	err := d.HandleCompletedSession(context.Background(), &payments.CompletedSession{SessionID: "cs_pending"})
	require.NoError(t, err)

	require.Len(t, orders.orders, 1)
	require.NotNil(t, orders.orders[0].OrganizationID)
	assert.EqualValues(t, 9, *orders.orders[0].OrganizationID)

	require.Len(t, userPasses.grants, 1)
	g := userPasses.grants[0]
	assert.EqualValues(t, 10, g.CreditsTotal)
	assert.EqualValues(t, 10, g.CreditsRemaining)
	assert.Equal(t, "dancer@example.com", g.BuyerEmail)
	assert.Equal(t, fixed, g.PurchaseDate)
	assert.Equal(t, fixed.Add(30*24*time.Hour), g.ExpiryDate)
}

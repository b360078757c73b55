package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePurchaseKind(t *testing.T) {
	for _, s := range []string{"ticket_purchase", "pass_purchase", "package_purchase", "course_enrollment"} {
		k, err := ParsePurchaseKind(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(k))
	}

	_, err := ParsePurchaseKind("gift_card")
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = ParsePurchaseKind("")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestIntentMetadataRoundTrip(t *testing.T) {
	in := &Intent{
		Kind:           KindTicket,
		OrganizationID: 7,
		EventID:        42,
		BuyerEmail:     "dancer@example.com",
		BuyerName:      "Sam Dancer",
		Items: []LineItem{
			{TicketTypeID: 3, Name: "Salsa Night - General", UnitPrice: decimal.RequireFromString("35.00"), Quantity: 2},
		},
		Subtotal: decimal.RequireFromString("70.00"),
		Fees:     decimal.RequireFromString("1.40"),
		Tax:      decimal.RequireFromString("9.28"),
		Total:    decimal.RequireFromString("80.68"),
	}

	meta, err := in.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "ticket_purchase", meta["purchase_type"])
	assert.Equal(t, "7", meta["organization_id"])
	assert.Equal(t, "42", meta["event_id"])
	assert.Equal(t, "80.68", meta["total"])

	out, err := DecodeIntent(meta)
	require.NoError(t, err)
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.OrganizationID, out.OrganizationID)
	assert.Equal(t, in.EventID, out.EventID)
	assert.Equal(t, in.BuyerEmail, out.BuyerEmail)
	require.Len(t, out.Items, 1)
	assert.Equal(t, uint64(3), out.Items[0].TicketTypeID)
	assert.EqualValues(t, 2, out.Items[0].Quantity)
	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.RequireFromString("35.00")))
	assert.True(t, out.Total.Equal(in.Total))
}

func TestIntentMetadataOmitsZeroEvent(t *testing.T) {
	in := &Intent{
		Kind:           KindPass,
		OrganizationID: 7,
		BuyerEmail:     "dancer@example.com",
		BuyerName:      "Sam",
		Items:          []LineItem{{PassTypeID: 9, Name: "10-Class Pass", UnitPrice: decimal.RequireFromString("120.00"), Quantity: 1}},
		Subtotal:       decimal.RequireFromString("120.00"),
		Fees:           decimal.RequireFromString("2.40"),
		Tax:            decimal.RequireFromString("15.91"),
		Total:          decimal.RequireFromString("138.31"),
	}
	meta, err := in.Metadata()
	require.NoError(t, err)
	_, ok := meta["event_id"]
	assert.False(t, ok)

	out, err := DecodeIntent(meta)
	require.NoError(t, err)
	assert.Zero(t, out.EventID)
}

func TestDecodeIntentRejectsBadBag(t *testing.T) {
	_, err := DecodeIntent(map[string]string{"purchase_type": "ticket_purchase", "items": "not json", "subtotal": "1", "fees": "0", "tax": "0", "total": "1"})
	assert.Error(t, err)

	_, err = DecodeIntent(map[string]string{"purchase_type": "mystery"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = DecodeIntent(map[string]string{
		"purchase_type": "ticket_purchase", "items": "[]",
		"subtotal": "abc", "fees": "0", "tax": "0", "total": "0",
	})
	assert.Error(t, err)
}

func TestItemType(t *testing.T) {
	assert.Equal(t, "ticket", KindTicket.ItemType())
	assert.Equal(t, "pass", KindPass.ItemType())
	assert.Equal(t, "package", KindPackage.ItemType())
	assert.Equal(t, "course", KindCourse.ItemType())
}

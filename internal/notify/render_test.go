package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groovegrid/groovegrid/internal/queue"
)

func TestSubstitute(t *testing.T) {
	got := Substitute("Hi {{name}}, we emailed {{email}}.", "Sam", "sam@example.com")
	assert.Equal(t, "Hi Sam, we emailed sam@example.com.", got)

	got = Substitute("{{name}} {{name}}", "Sam", "sam@example.com")
	assert.Equal(t, "Sam Sam", got)

	plain := "no tokens here"
	assert.Equal(t, plain, Substitute(plain, "Sam", "sam@example.com"))
}

func TestRenderOrderConfirmation(t *testing.T) {
	subject, body := RenderOrderConfirmation(queue.OrderCompletedEvent{
		OrderNumber: "a1b2c3d4-0000-0000-0000-000000000000",
		Kind:        "ticket_purchase",
		BuyerName:   "Sam Dancer",
		OrgName:     "Havana Nights Studio",
		EventTitle:  "Salsa Social",
		Items: []queue.OrderCompletedRow{
			{Name: "General Admission", Quantity: 2, UnitPrice: "35.00", Subtotal: "70.00"},
		},
		Subtotal: "70.00",
		Fees:     "1.40",
		Tax:      "9.28",
		Total:    "80.68",
		Currency: "CAD",
	})

	assert.Equal(t, "Your order A1B2C3D4 is confirmed", subject)
	assert.Contains(t, body, "Sam Dancer")
	assert.Contains(t, body, "Havana Nights Studio")
	assert.Contains(t, body, "Salsa Social")
	assert.Contains(t, body, "General Admission")
	assert.Contains(t, body, "$70.00")
	assert.Contains(t, body, "$80.68 CAD")
	assert.Contains(t, body, "a1b2c3d4-0000-0000-0000-000000000000")
}

func TestRenderOrderConfirmationEscapesHTML(t *testing.T) {
	_, body := RenderOrderConfirmation(queue.OrderCompletedEvent{
		OrderNumber: "ref",
		BuyerName:   `<script>alert("x")</script>`,
		OrgName:     "Studio & Co",
	})
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Studio &amp; Co")
}

func TestRenderOrderConfirmationNoEvent(t *testing.T) {
	_, body := RenderOrderConfirmation(queue.OrderCompletedEvent{
		OrderNumber: "deadbeef-1111",
		BuyerName:   "Sam",
		OrgName:     "Studio",
	})
	assert.NotContains(t, body, "<strong></strong>")
	assert.Contains(t, body, "Studio has confirmed your purchase.")
}

// Package queue defines the message payloads exchanged over the broker and
// the background consumer that turns completed orders into confirmation
// emails.
package queue

// OrderCompletedEvent is published after fulfillment grants succeed. It
// carries enough for downstream consumers to render the confirmation email
// without querying the primary database.
type OrderCompletedEvent struct {
	OrderID     uint64              `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Kind        string              `json:"kind"`
	BuyerEmail  string              `json:"buyer_email"`
	BuyerName   string              `json:"buyer_name"`
	OrgName     string              `json:"org_name"`
	EventTitle  string              `json:"event_title,omitempty"`
	Items       []OrderCompletedRow `json:"items"`
	Subtotal    string              `json:"subtotal"`
	Fees        string              `json:"fees"`
	Tax         string              `json:"tax"`
	Total       string              `json:"total"`
	Currency    string              `json:"currency"`
	CompletedAt string              `json:"completed_at"`
}

// OrderCompletedRow is one line of the confirmation email.
type OrderCompletedRow struct {
	Name      string `json:"name"`
	Quantity  uint32 `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

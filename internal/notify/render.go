package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/groovegrid/groovegrid/internal/queue"
)

// RenderOrderConfirmation builds the confirmation email for a completed
// order. Plain string building keeps the template next to the code; the
// layout is a single centered card with an item table and totals.
func RenderOrderConfirmation(ev queue.OrderCompletedEvent) (subject, body string) {
	subject = fmt.Sprintf("Your order %s is confirmed", shortOrderRef(ev.OrderNumber))

	var sb strings.Builder
	sb.WriteString(`<div style="max-width:560px;margin:0 auto;font-family:Arial,sans-serif;color:#222">`)
	sb.WriteString(fmt.Sprintf(`<h2>Thanks for your order, %s!</h2>`, html.EscapeString(ev.BuyerName)))
	sb.WriteString(fmt.Sprintf(`<p>%s has confirmed your purchase`, html.EscapeString(ev.OrgName)))
	if ev.EventTitle != "" {
		sb.WriteString(fmt.Sprintf(` for <strong>%s</strong>`, html.EscapeString(ev.EventTitle)))
	}
	sb.WriteString(`.</p>`)

	sb.WriteString(`<table style="width:100%;border-collapse:collapse">`)
	sb.WriteString(`<tr><th style="text-align:left;border-bottom:1px solid #ddd;padding:6px">Item</th>` +
		`<th style="text-align:right;border-bottom:1px solid #ddd;padding:6px">Qty</th>` +
		`<th style="text-align:right;border-bottom:1px solid #ddd;padding:6px">Price</th></tr>`)
	for _, it := range ev.Items {
		sb.WriteString(fmt.Sprintf(
			`<tr><td style="padding:6px">%s</td><td style="text-align:right;padding:6px">%d</td><td style="text-align:right;padding:6px">$%s</td></tr>`,
			html.EscapeString(it.Name), it.Quantity, it.Subtotal))
	}
	sb.WriteString(`</table>`)

	sb.WriteString(`<table style="width:100%;margin-top:12px">`)
	sb.WriteString(totalRow("Subtotal", ev.Subtotal))
	sb.WriteString(totalRow("Service fee", ev.Fees))
	sb.WriteString(totalRow("Tax", ev.Tax))
	sb.WriteString(fmt.Sprintf(
		`<tr><td style="text-align:right;padding:4px"><strong>Total</strong></td><td style="text-align:right;padding:4px;width:100px"><strong>$%s %s</strong></td></tr>`,
		ev.Total, ev.Currency))
	sb.WriteString(`</table>`)

	sb.WriteString(fmt.Sprintf(`<p style="color:#777;font-size:12px">Order reference: %s</p>`, html.EscapeString(ev.OrderNumber)))
	sb.WriteString(`</div>`)
	return subject, sb.String()
}

func totalRow(label, amount string) string {
	return fmt.Sprintf(
		`<tr><td style="text-align:right;padding:4px">%s</td><td style="text-align:right;padding:4px;width:100px">$%s</td></tr>`,
		label, amount)
}

// shortOrderRef trims a UUID order number to its first block for subjects.
func shortOrderRef(orderNumber string) string {
	if i := strings.IndexByte(orderNumber, '-'); i > 0 {
		return strings.ToUpper(orderNumber[:i])
	}
	return orderNumber
}

// Substitute replaces the literal {{name}} and {{email}} placeholders in a
// campaign message. No template engine: organizers type these two tokens
// and nothing else is supported.
func Substitute(text, name, email string) string {
	out := strings.ReplaceAll(text, "{{name}}", name)
	return strings.ReplaceAll(out, "{{email}}", email)
}

package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the same way Stripe does:
// HMAC-SHA256 of "<timestamp>.<payload>" with the endpoint secret.
func signPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedSessionPayload() []byte {
	// ConstructEvent rejects events whose api_version differs from the
	// pinned SDK version.
	return []byte(`{
		"id": "evt_1",
		"api_version": "` + stripe.APIVersion + `",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_123",
				"object": "checkout.session",
				"payment_intent": {"id": "pi_test_456"},
				"customer_details": {"email": "dancer@example.com", "phone": "+15145550123"},
				"metadata": {
					"purchase_type": "ticket_purchase",
					"organization_id": "7",
					"event_id": "42",
					"buyer_email": "dancer@example.com",
					"buyer_name": "Sam Dancer",
					"items": "[{\"ticket_type_id\":3,\"name\":\"General\",\"unit_price\":\"35\",\"quantity\":2}]",
					"subtotal": "70.00",
					"fees": "1.40",
					"tax": "9.28",
					"total": "80.68"
				}
			}
		}
	}`)
}

func TestVerifyEventValidSignature(t *testing.T) {
	payload := completedSessionPayload()
	header := signPayload(t, payload, testWebhookSecret)

	event, err := VerifyEvent(payload, header, testWebhookSecret)
	require.NoError(t, err)
	assert.EqualValues(t, "checkout.session.completed", event.Type)
}

func TestVerifyEventRejectsBadSignature(t *testing.T) {
	payload := completedSessionPayload()

	_, err := VerifyEvent(payload, signPayload(t, payload, "whsec_wrong"), testWebhookSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = VerifyEvent(payload, "garbage", testWebhookSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// Tampered payload with a signature for the original.
	header := signPayload(t, payload, testWebhookSecret)
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '
	_, err = VerifyEvent(tampered, header, testWebhookSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseCompletedSession(t *testing.T) {
	payload := completedSessionPayload()
	event, err := VerifyEvent(payload, signPayload(t, payload, testWebhookSecret), testWebhookSecret)
	require.NoError(t, err)

	cs, err := ParseCompletedSession(event)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", cs.SessionID)
	assert.Equal(t, "pi_test_456", cs.PaymentIntentID)
	assert.Equal(t, "dancer@example.com", cs.CustomerEmail)
	assert.Equal(t, "+15145550123", cs.CustomerPhone)
	assert.Equal(t, "ticket_purchase", cs.Metadata["purchase_type"])

	intent, err := DecodeIntent(cs.Metadata)
	require.NoError(t, err)
	assert.Equal(t, KindTicket, intent.Kind)
	assert.EqualValues(t, 42, intent.EventID)
}

func TestParseCompletedSessionWrongType(t *testing.T) {
	payload := []byte(`{"id":"evt_2","api_version":"` + stripe.APIVersion + `","type":"payment_intent.succeeded","data":{"object":{}}}`)
	event, err := VerifyEvent(payload, signPayload(t, payload, testWebhookSecret), testWebhookSecret)
	require.NoError(t, err)

	_, err = ParseCompletedSession(event)
	assert.Error(t, err)
}

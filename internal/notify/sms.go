package notify

import (
	"context"
	"errors"
)

// SMSSender sends one text message. No provider is wired yet; campaigns on
// the sms and whatsapp channels record every send as failed until one is.
type SMSSender interface {
	SendSMS(ctx context.Context, toPhone, message string) error
}

// ErrSMSNotConfigured is returned by the placeholder SMS sender.
var ErrSMSNotConfigured = errors.New("sms provider not configured")

// NoopSMS is the placeholder SMSSender.
type NoopSMS struct{}

// SendSMS always reports the provider as unconfigured.
func (NoopSMS) SendSMS(context.Context, string, string) error {
	return ErrSMSNotConfigured
}

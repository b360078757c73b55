// Package notify delivers transactional and campaign messages. Delivery is
// strictly best effort: no caller treats a send failure as fatal, so every
// function here returns errors for logging and counting only.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailersend/mailersend-go"
)

// Mailer sends one HTML email to one recipient. Production uses MailerSend;
// tests substitute a fake.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, html string) error
}

// ErrMailerNotConfigured is returned by the noop mailer used when no
// provider API key is set.
var ErrMailerNotConfigured = errors.New("mail provider not configured")

// MailerSendClient is the production Mailer backed by the MailerSend API.
type MailerSendClient struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

// NewMailerSend returns a Mailer using the given API key and sender.
func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	return &MailerSendClient{
		client:    mailersend.NewMailersend(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers one email.
func (m *MailerSendClient) Send(ctx context.Context, toName, toEmail, subject, html string) error {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetHTML(html)

	if _, err := m.client.Email.Send(ctx, msg); err != nil {
		return fmt.Errorf("mailersend: %w", err)
	}
	return nil
}

// NoopMailer satisfies Mailer when email is not configured. Every send
// fails with ErrMailerNotConfigured, which callers log and count.
type NoopMailer struct{}

// Send always reports the mailer as unconfigured.
func (NoopMailer) Send(context.Context, string, string, string, string) error {
	return ErrMailerNotConfigured
}

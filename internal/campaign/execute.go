// Package campaign executes marketing campaigns against an organization's
// past buyers.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/monitoring"
	"github.com/groovegrid/groovegrid/internal/notify"
)

// ErrNotExecutable is returned when a campaign is not in a runnable state
// (already sending, completed, or failed).
var ErrNotExecutable = errors.New("campaign is not executable")

// CampaignStore is the slice of CampaignRepo the executor needs.
type CampaignStore interface {
	GetOwned(ctx context.Context, id, orgID uint64) (*model.Campaign, error)
	MarkSending(ctx context.Context, id uint64, recipients uint32) (bool, error)
	Finalize(ctx context.Context, id uint64, status string, sentAt time.Time) error
	RecordSend(ctx context.Context, s *model.CampaignSend) error
}

// RecipientStore derives the campaign audience from completed orders.
type RecipientStore interface {
	DistinctBuyerEmails(ctx context.Context, orgID uint64) ([]model.Recipient, error)
}

// Result summarizes one campaign run.
type Result struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// Service runs campaigns. Sends happen inline in the execute request; the
// audiences here are studio mailing lists, not bulk marketing volumes.
type Service struct {
	campaigns  CampaignStore
	recipients RecipientStore
	mailer     notify.Mailer
	sms        notify.SMSSender
}

// NewService wires a campaign executor.
func NewService(campaigns CampaignStore, recipients RecipientStore, mailer notify.Mailer, sms notify.SMSSender) *Service {
	return &Service{campaigns: campaigns, recipients: recipients, mailer: mailer, sms: sms}
}

// Execute runs one campaign for the owning organization. Only draft and
// scheduled campaigns run; the conditional status flip makes a concurrent
// second execute a clean ErrNotExecutable. Per-recipient failures are
// recorded and do not stop the run; the campaign completes as long as at
// least one send succeeded, otherwise it is marked failed.
func (s *Service) Execute(ctx context.Context, campaignID, orgID uint64) (*Result, error) {
	c, err := s.campaigns.GetOwned(ctx, campaignID, orgID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CampaignStatusDraft && c.Status != model.CampaignStatusScheduled {
		return nil, ErrNotExecutable
	}

	audience, err := s.recipients.DistinctBuyerEmails(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load audience: %w", err)
	}

	ok, err := s.campaigns.MarkSending(ctx, c.ID, uint32(len(audience)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotExecutable
	}

	res := &Result{Recipients: len(audience)}
	for _, rcpt := range audience {
		sendErr := s.sendOne(ctx, c, rcpt)
		rec := &model.CampaignSend{
			CampaignID:     c.ID,
			RecipientEmail: rcpt.Email,
		}
		now := time.Now().UTC()
		if sendErr != nil {
			res.Failed++
			rec.Status = "failed"
			msg := truncate(sendErr.Error(), 500)
			rec.ErrorMessage = &msg
			monitoring.EmailFailures.WithLabelValues("campaign").Inc()
		} else {
			res.Sent++
			rec.Status = "sent"
			rec.SentAt = &now
			monitoring.EmailsSent.WithLabelValues("campaign").Inc()
		}
		if err := s.campaigns.RecordSend(ctx, rec); err != nil {
			log.Printf("campaign %d: record send to %s: %v", c.ID, rcpt.Email, err)
		}
	}

	status := model.CampaignStatusCompleted
	if res.Sent == 0 && res.Recipients > 0 {
		status = model.CampaignStatusFailed
	}
	if err := s.campaigns.Finalize(ctx, c.ID, status, time.Now().UTC()); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) sendOne(ctx context.Context, c *model.Campaign, rcpt model.Recipient) error {
	subject := ""
	if c.Subject != nil {
		subject = notify.Substitute(*c.Subject, rcpt.Name, rcpt.Email)
	}
	message := ""
	if c.Message != nil {
		message = notify.Substitute(*c.Message, rcpt.Name, rcpt.Email)
	}
	switch c.Channel {
	case model.CampaignChannelEmail:
		return s.mailer.Send(ctx, rcpt.Name, rcpt.Email, subject, message)
	case model.CampaignChannelSMS, model.CampaignChannelWhatsApp:
		// Orders have no phone for most buyers; SMS channels stay
		// unconfigured until a provider lands.
		return s.sms.SendSMS(ctx, "", message)
	default:
		return fmt.Errorf("unknown channel %q", c.Channel)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

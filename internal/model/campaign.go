package model

import "time"

// Campaign channels and statuses.
const (
	CampaignChannelEmail    = "email"
	CampaignChannelSMS      = "sms"
	CampaignChannelWhatsApp = "whatsapp"

	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSending   = "sending"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

// Campaign is a marketing message sent to an organization's past buyers.
// Subject and Message may contain the literal placeholders {{name}} and
// {{email}}, substituted per recipient at send time.
type Campaign struct {
	ID              uint64     `json:"id"`               // campaigns.id
	OrganizationID  uint64     `json:"organization_id"`  // campaigns.organization_id
	Name            string     `json:"name"`             // campaigns.name
	Channel         string     `json:"channel"`          // campaigns.channel
	Subject         *string    `json:"subject"`          // campaigns.subject (nullable)
	Message         *string    `json:"message"`          // campaigns.message (nullable)
	Status          string     `json:"status"`           // campaigns.status
	RecipientsCount uint32     `json:"recipients_count"` // campaigns.recipients_count
	SentAt          *time.Time `json:"sent_at"`          // campaigns.sent_at (nullable)
	CreatedAt       time.Time  `json:"created_at"`       // campaigns.created_at
	UpdatedAt       time.Time  `json:"updated_at"`       // campaigns.updated_at
}

// Recipient is one campaign audience member, derived from past orders.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CampaignSend records one delivery attempt within a campaign run.
type CampaignSend struct {
	ID             uint64     `json:"id"`              // campaign_sends.id
	CampaignID     uint64     `json:"campaign_id"`     // campaign_sends.campaign_id
	RecipientEmail string     `json:"recipient_email"` // campaign_sends.recipient_email
	Status         string     `json:"status"`          // campaign_sends.status (sent/failed)
	ErrorMessage   *string    `json:"error_message"`   // campaign_sends.error_message (nullable)
	SentAt         *time.Time `json:"sent_at"`         // campaign_sends.sent_at (nullable)
	CreatedAt      time.Time  `json:"created_at"`      // campaign_sends.created_at
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/groovegrid/groovegrid/internal/model"
)

// CampaignRepo manages marketing campaigns and their per-recipient send log.
type CampaignRepo struct {
	db *sql.DB
}

// NewCampaignRepo returns a new CampaignRepo bound to the given database.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

const campaignColumns = `id, organization_id, name, channel, subject, message, status, recipients_count, sent_at, created_at, updated_at`

func scanCampaign(sc interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := sc.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Name,
		&c.Channel,
		&c.Subject,
		&c.Message,
		&c.Status,
		&c.RecipientsCount,
		&c.SentAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new draft campaign.
func (r *CampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	const q = `INSERT INTO campaigns (organization_id, name, channel, subject, message)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.OrganizationID, c.Name, c.Channel, c.Subject, c.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	got, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByID fetches a campaign by primary key.
func (r *CampaignRepo) GetByID(ctx context.Context, id uint64) (*model.Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = ?`
	return scanCampaign(r.db.QueryRowContext(ctx, q, id))
}

// GetOwned fetches a campaign and verifies tenant ownership.
func (r *CampaignRepo) GetOwned(ctx context.Context, id, orgID uint64) (*model.Campaign, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != orgID {
		return nil, ErrForbidden
	}
	return c, nil
}

// ListByOrganization returns a tenant's campaigns, newest first.
func (r *CampaignRepo) ListByOrganization(ctx context.Context, orgID uint64) ([]model.Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns WHERE organization_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Campaign
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Channel, &c.Subject, &c.Message,
			&c.Status, &c.RecipientsCount, &c.SentAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a draft or scheduled campaign.
// Campaigns that started sending are immutable.
func (r *CampaignRepo) Update(ctx context.Context, orgID uint64, c *model.Campaign) error {
	const q = `UPDATE campaigns SET name = ?, channel = ?, subject = ?, message = ?
	           WHERE id = ? AND organization_id = ? AND status IN ('draft','scheduled')`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Channel, c.Subject, c.Message, c.ID, orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// MarkSending transitions a campaign from draft or scheduled to sending and
// records the audience size. The conditional WHERE makes concurrent execute
// requests race safely: only one caller observes a row change.
func (r *CampaignRepo) MarkSending(ctx context.Context, id uint64, recipients uint32) (bool, error) {
	const q = `UPDATE campaigns SET status = 'sending', recipients_count = ?
	           WHERE id = ? AND status IN ('draft','scheduled')`
	res, err := r.db.ExecContext(ctx, q, recipients, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Finalize records the terminal status of a campaign run.
func (r *CampaignRepo) Finalize(ctx context.Context, id uint64, status string, sentAt time.Time) error {
	const q = `UPDATE campaigns SET status = ?, sent_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, status, sentAt.UTC(), id)
	return err
}

// RecordSend appends one delivery attempt to the campaign send log.
func (r *CampaignRepo) RecordSend(ctx context.Context, s *model.CampaignSend) error {
	const q = `INSERT INTO campaign_sends (campaign_id, recipient_email, status, error_message, sent_at)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.CampaignID, s.RecipientEmail, s.Status, s.ErrorMessage, s.SentAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// ListSends returns the delivery log of one campaign.
func (r *CampaignRepo) ListSends(ctx context.Context, campaignID uint64) ([]model.CampaignSend, error) {
	const q = `SELECT id, campaign_id, recipient_email, status, error_message, sent_at, created_at
	           FROM campaign_sends WHERE campaign_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CampaignSend
	for rows.Next() {
		var s model.CampaignSend
		if err := rows.Scan(&s.ID, &s.CampaignID, &s.RecipientEmail, &s.Status, &s.ErrorMessage, &s.SentAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

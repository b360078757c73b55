package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/notify"
	"github.com/groovegrid/groovegrid/internal/repository"
)

type fakeCampaignStore struct {
	campaign    *model.Campaign
	markedOK    bool
	sends       []*model.CampaignSend
	finalStatus string
}

func (s *fakeCampaignStore) GetOwned(ctx context.Context, id, orgID uint64) (*model.Campaign, error) {
	if s.campaign == nil || s.campaign.ID != id || s.campaign.OrganizationID != orgID {
		return nil, repository.ErrCampaignNotFound
	}
	return s.campaign, nil
}

func (s *fakeCampaignStore) MarkSending(ctx context.Context, id uint64, recipients uint32) (bool, error) {
	if !s.markedOK {
		return false, nil
	}
	s.campaign.Status = model.CampaignStatusSending
	s.campaign.RecipientsCount = recipients
	return true, nil
}

func (s *fakeCampaignStore) Finalize(ctx context.Context, id uint64, status string, sentAt time.Time) error {
	s.finalStatus = status
	return nil
}

func (s *fakeCampaignStore) RecordSend(ctx context.Context, rec *model.CampaignSend) error {
	s.sends = append(s.sends, rec)
	return nil
}

type fakeRecipientStore struct {
	audience []model.Recipient
}

func (s *fakeRecipientStore) DistinctBuyerEmails(ctx context.Context, orgID uint64) ([]model.Recipient, error) {
	return s.audience, nil
}

type fakeMailer struct {
	sent    []string
	failFor map[string]error
}

func (m *fakeMailer) Send(ctx context.Context, toName, toEmail, subject, html string) error {
	if err := m.failFor[toEmail]; err != nil {
		return err
	}
	m.sent = append(m.sent, toEmail+"|"+subject+"|"+html)
	return nil
}

func strptr(s string) *string { return &s }

func emailCampaign(status string) *model.Campaign {
	return &model.Campaign{
		ID:             1,
		OrganizationID: 7,
		Name:           "Spring Social",
		Channel:        model.CampaignChannelEmail,
		Subject:        strptr("Hi {{name}}!"),
		Message:        strptr("See you there, {{name}} ({{email}})."),
		Status:         status,
	}
}

func TestExecuteSendsToAudience(t *testing.T) {
	store := &fakeCampaignStore{campaign: emailCampaign(model.CampaignStatusDraft), markedOK: true}
	mailer := &fakeMailer{}
	svc := NewService(store, &fakeRecipientStore{audience: []model.Recipient{
		{Email: "a@example.com", Name: "Ana"},
		{Email: "b@example.com", Name: "Ben"},
	}}, mailer, notify.NoopSMS{})

	res, err := svc.Execute(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, &Result{Recipients: 2, Sent: 2, Failed: 0}, res)
	assert.Equal(t, model.CampaignStatusCompleted, store.finalStatus)

	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[0], "Hi Ana!")
	assert.Contains(t, mailer.sent[0], "Ana (a@example.com)")
	assert.Contains(t, mailer.sent[1], "Hi Ben!")

	require.Len(t, store.sends, 2)
	assert.Equal(t, "sent", store.sends[0].Status)
	assert.NotNil(t, store.sends[0].SentAt)
}

func TestExecuteRecordsFailures(t *testing.T) {
	store := &fakeCampaignStore{campaign: emailCampaign(model.CampaignStatusScheduled), markedOK: true}
	mailer := &fakeMailer{failFor: map[string]error{"bad@example.com": errors.New("mailbox full")}}
	svc := NewService(store, &fakeRecipientStore{audience: []model.Recipient{
		{Email: "bad@example.com", Name: "Bo"},
		{Email: "ok@example.com", Name: "Ola"},
	}}, mailer, notify.NoopSMS{})

	res, err := svc.Execute(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, model.CampaignStatusCompleted, store.finalStatus)

	require.Len(t, store.sends, 2)
	assert.Equal(t, "failed", store.sends[0].Status)
	require.NotNil(t, store.sends[0].ErrorMessage)
	assert.Equal(t, "mailbox full", *store.sends[0].ErrorMessage)
}

func TestExecuteAllFailedMarksFailed(t *testing.T) {
	store := &fakeCampaignStore{campaign: emailCampaign(model.CampaignStatusDraft), markedOK: true}
	mailer := &fakeMailer{failFor: map[string]error{"a@example.com": errors.New("boom")}}
	svc := NewService(store, &fakeRecipientStore{audience: []model.Recipient{
		{Email: "a@example.com", Name: "Ana"},
	}}, mailer, notify.NoopSMS{})

	res, err := svc.Execute(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, model.CampaignStatusFailed, store.finalStatus)
}

func TestExecuteEmptyAudienceCompletes(t *testing.T) {
	store := &fakeCampaignStore{campaign: emailCampaign(model.CampaignStatusDraft), markedOK: true}
	svc := NewService(store, &fakeRecipientStore{}, &fakeMailer{}, notify.NoopSMS{})

	res, err := svc.Execute(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, &Result{}, res)
	assert.Equal(t, model.CampaignStatusCompleted, store.finalStatus)
}

func TestExecuteRejectsNonRunnableStatus(t *testing.T) {
	for _, status := range []string{model.CampaignStatusSending, model.CampaignStatusCompleted, model.CampaignStatusFailed} {
		store := &fakeCampaignStore{campaign: emailCampaign(status), markedOK: true}
		svc := NewService(store, &fakeRecipientStore{}, &fakeMailer{}, notify.NoopSMS{})
		_, err := svc.Execute(context.Background(), 1, 7)
		assert.ErrorIs(t, err, ErrNotExecutable, status)
	}
}

func TestExecuteLosesMarkSendingRace(t *testing.T) {
	store := &fakeCampaignStore{campaign: emailCampaign(model.CampaignStatusDraft), markedOK: false}
	svc := NewService(store, &fakeRecipientStore{audience: []model.Recipient{{Email: "a@example.com"}}}, &fakeMailer{}, notify.NoopSMS{})

	_, err := svc.Execute(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrNotExecutable)
	assert.Empty(t, store.sends)
}

func TestExecuteUnknownCampaign(t *testing.T) {
	store := &fakeCampaignStore{}
	svc := NewService(store, &fakeRecipientStore{}, &fakeMailer{}, notify.NoopSMS{})
	_, err := svc.Execute(context.Background(), 99, 7)
	assert.ErrorIs(t, err, repository.ErrCampaignNotFound)
}

func TestExecuteSMSChannelFailsWithoutProvider(t *testing.T) {
	c := emailCampaign(model.CampaignStatusDraft)
	c.Channel = model.CampaignChannelSMS
	store := &fakeCampaignStore{campaign: c, markedOK: true}
	svc := NewService(store, &fakeRecipientStore{audience: []model.Recipient{{Email: "a@example.com", Name: "Ana"}}}, &fakeMailer{}, notify.NoopSMS{})

	res, err := svc.Execute(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, model.CampaignStatusFailed, store.finalStatus)
}

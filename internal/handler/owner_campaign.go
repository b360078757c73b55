package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/groovegrid/groovegrid/internal/campaign"
	"github.com/groovegrid/groovegrid/internal/model"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// CampaignHandler manages marketing campaigns and their execution.
type CampaignHandler struct {
	Campaigns *repository.CampaignRepo
	Executor  *campaign.Service
}

// NewCampaignHandler constructs a CampaignHandler.
func NewCampaignHandler(campaigns *repository.CampaignRepo, executor *campaign.Service) *CampaignHandler {
	if campaigns == nil || executor == nil {
		panic("nil dependency passed to NewCampaignHandler")
	}
	return &CampaignHandler{Campaigns: campaigns, Executor: executor}
}

type campaignRequest struct {
	Name    string  `json:"name"`
	Channel string  `json:"channel"`
	Subject *string `json:"subject"`
	Message *string `json:"message"`
}

func (r *campaignRequest) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	switch r.Channel {
	case model.CampaignChannelEmail, model.CampaignChannelSMS, model.CampaignChannelWhatsApp:
	case "":
		r.Channel = model.CampaignChannelEmail
	default:
		return "invalid channel"
	}
	if r.Channel == model.CampaignChannelEmail && (r.Subject == nil || strings.TrimSpace(*r.Subject) == "") {
		return "subject is required for email campaigns"
	}
	if r.Message == nil || strings.TrimSpace(*r.Message) == "" {
		return "message is required"
	}
	return ""
}

// CreateCampaign handles POST /v1/owner/campaigns.
func (h *CampaignHandler) CreateCampaign(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body campaignRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	cmp := &model.Campaign{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(body.Name),
		Channel:        body.Channel,
		Subject:        body.Subject,
		Message:        body.Message,
	}
	if err := h.Campaigns.Create(c.Request().Context(), cmp); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, cmp)
}

// ListCampaigns handles GET /v1/owner/campaigns.
func (h *CampaignHandler) ListCampaigns(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Campaigns.ListByOrganization(c.Request().Context(), orgID)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetCampaign handles GET /v1/owner/campaigns/:id, including the send log.
func (h *CampaignHandler) GetCampaign(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cmp, err := h.Campaigns.GetOwned(c.Request().Context(), id, orgID)
	if err != nil {
		return repoError(c, err)
	}
	sends, err := h.Campaigns.ListSends(c.Request().Context(), cmp.ID)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"campaign": cmp, "sends": sends})
}

// UpdateCampaign handles PUT /v1/owner/campaigns/:id.
func (h *CampaignHandler) UpdateCampaign(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body campaignRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	cmp := &model.Campaign{
		ID:      id,
		Name:    strings.TrimSpace(body.Name),
		Channel: body.Channel,
		Subject: body.Subject,
		Message: body.Message,
	}
	if err := h.Campaigns.Update(c.Request().Context(), orgID, cmp); err != nil {
		return repoError(c, err)
	}
	updated, err := h.Campaigns.GetByID(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// ExecuteCampaign handles POST /v1/campaigns/:id/execute.
func (h *CampaignHandler) ExecuteCampaign(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	res, err := h.Executor.Execute(c.Request().Context(), id, orgID)
	if err != nil {
		if errors.Is(err, campaign.ErrNotExecutable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "campaign is not executable"})
		}
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

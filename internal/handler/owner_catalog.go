package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/groovegrid/groovegrid/internal/model"
)

type passTypeRequest struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CreditsTotal uint32          `json:"credits_total"`
	ValidityDays uint32          `json:"validity_days"`
	IsActive     *bool           `json:"is_active"`
}

// CreatePassType handles POST /v1/owner/pass-types.
func (h *OwnerHandler) CreatePassType(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body passTypeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.CreditsTotal == 0 || body.ValidityDays == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "credits_total and validity_days must be positive"})
	}
	if body.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative"})
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	pt := &model.PassType{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(body.Name),
		Description:    body.Description,
		Price:          body.Price,
		CreditsTotal:   body.CreditsTotal,
		ValidityDays:   body.ValidityDays,
		IsActive:       active,
	}
	if err := h.PassTypes.Create(c.Request().Context(), pt); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, pt)
}

// ListPassTypes handles GET /v1/owner/pass-types.
func (h *OwnerHandler) ListPassTypes(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.PassTypes.ListByOrganization(c.Request().Context(), orgID, false)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdatePassType handles PUT /v1/owner/pass-types/:id.
func (h *OwnerHandler) UpdatePassType(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	existing, err := h.PassTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	var body passTypeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	existing.Name = strings.TrimSpace(body.Name)
	existing.Description = body.Description
	existing.Price = body.Price
	existing.CreditsTotal = body.CreditsTotal
	existing.ValidityDays = body.ValidityDays
	if body.IsActive != nil {
		existing.IsActive = *body.IsActive
	}
	if err := h.PassTypes.Update(ctx, orgID, existing); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

type packageRequest struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Credits      uint32          `json:"credits"`
	Price        decimal.Decimal `json:"price"`
	ValidityDays uint32          `json:"validity_days"`
	IsActive     *bool           `json:"is_active"`
}

// CreatePackage handles POST /v1/owner/packages.
func (h *OwnerHandler) CreatePackage(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body packageRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.Credits == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "credits must be positive"})
	}
	if body.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative"})
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	pkg := &model.ClassPackage{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(body.Name),
		Description:    body.Description,
		Credits:        body.Credits,
		Price:          body.Price,
		ValidityDays:   body.ValidityDays,
		IsActive:       active,
	}
	if err := h.Packages.Create(c.Request().Context(), pkg); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, pkg)
}

// ListPackages handles GET /v1/owner/packages.
func (h *OwnerHandler) ListPackages(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Packages.ListByOrganization(c.Request().Context(), orgID, false)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdatePackage handles PUT /v1/owner/packages/:id.
func (h *OwnerHandler) UpdatePackage(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	existing, err := h.Packages.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	var body packageRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	existing.Name = strings.TrimSpace(body.Name)
	existing.Description = body.Description
	existing.Credits = body.Credits
	existing.Price = body.Price
	existing.ValidityDays = body.ValidityDays
	if body.IsActive != nil {
		existing.IsActive = *body.IsActive
	}
	if err := h.Packages.Update(ctx, orgID, existing); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

type courseRequest struct {
	Title         string          `json:"title"`
	Description   *string         `json:"description"`
	Instructor    *string         `json:"instructor"`
	Level         *string         `json:"level"`
	DurationWeeks *uint32         `json:"duration_weeks"`
	StartDate     *time.Time      `json:"start_date"`
	ScheduleDays  *string         `json:"schedule_days"`
	ScheduleTime  *string         `json:"schedule_time"`
	MaxStudents   *uint32         `json:"max_students"`
	Price         decimal.Decimal `json:"price"`
	Status        string          `json:"status"`
}

// CreateCourse handles POST /v1/owner/courses.
func (h *OwnerHandler) CreateCourse(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body courseRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if body.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative"})
	}
	status := body.Status
	if status == "" {
		status = "draft"
	}
	if status != "draft" && status != "published" && status != "archived" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	course := &model.Course{
		OrganizationID: orgID,
		Title:          strings.TrimSpace(body.Title),
		Description:    body.Description,
		Instructor:     body.Instructor,
		Level:          body.Level,
		DurationWeeks:  body.DurationWeeks,
		StartDate:      body.StartDate,
		ScheduleDays:   body.ScheduleDays,
		ScheduleTime:   body.ScheduleTime,
		MaxStudents:    body.MaxStudents,
		Price:          body.Price,
		Status:         status,
	}
	if err := h.Courses.Create(c.Request().Context(), course); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, course)
}

// ListCourses handles GET /v1/owner/courses.
func (h *OwnerHandler) ListCourses(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Courses.ListByOrganization(c.Request().Context(), orgID, false)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateCourse handles PUT /v1/owner/courses/:id.
func (h *OwnerHandler) UpdateCourse(c echo.Context) error {
	orgID, err := getOrgID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	existing, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	var body courseRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	status := body.Status
	if status == "" {
		status = existing.Status
	}
	if status != "draft" && status != "published" && status != "archived" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	existing.Title = strings.TrimSpace(body.Title)
	existing.Description = body.Description
	existing.Instructor = body.Instructor
	existing.Level = body.Level
	existing.DurationWeeks = body.DurationWeeks
	existing.StartDate = body.StartDate
	existing.ScheduleDays = body.ScheduleDays
	existing.ScheduleTime = body.ScheduleTime
	existing.MaxStudents = body.MaxStudents
	existing.Price = body.Price
	existing.Status = status
	if err := h.Courses.Update(ctx, orgID, existing); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/groovegrid/groovegrid/internal/curriculum"
)

// CurriculumGenerator is implemented by the Anthropic client.
type CurriculumGenerator interface {
	Generate(ctx context.Context, req curriculum.Request) (*curriculum.Curriculum, error)
}

// CurriculumHandler serves AI-drafted course outlines to organizers.
type CurriculumHandler struct {
	generator CurriculumGenerator
}

// NewCurriculumHandler constructs a CurriculumHandler.
func NewCurriculumHandler(generator CurriculumGenerator) *CurriculumHandler {
	return &CurriculumHandler{generator: generator}
}

// Generate handles POST /v1/courses/generate. The outline is returned to
// the organizer for review, never written to the catalog directly.
func (h *CurriculumHandler) Generate(c echo.Context) error {
	var req curriculum.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Style == "" || req.Level == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "style and level are required"})
	}
	if req.DurationWeeks <= 0 || req.DurationWeeks > 52 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_weeks must be between 1 and 52"})
	}

	cur, err := h.generator.Generate(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, curriculum.ErrNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "curriculum generation not configured"})
		}
		c.Logger().Errorf("curriculum: generate: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "generation failed"})
	}
	return c.JSON(http.StatusOK, cur)
}

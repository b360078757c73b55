// Package handler defines the HTTP handlers served by the router. Handlers
// bind and validate requests, call repositories and services, and translate
// sentinel errors into JSON error responses.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/groovegrid/groovegrid/internal/middleware"
	"github.com/groovegrid/groovegrid/internal/repository"
)

// getUserID extracts the authenticated user id from the Echo context.
func getUserID(c echo.Context) (uint64, error) {
	return ctxUint(c, middleware.CtxUserID)
}

// getOrgID extracts the organizer's organization id from the Echo context.
func getOrgID(c echo.Context) (uint64, error) {
	return ctxUint(c, middleware.CtxOrgID)
}

// getEmail extracts the verified email claim from the Echo context. The
// portal uses it as the grant correlation key, so an empty email is an
// error rather than a wildcard.
func getEmail(c echo.Context) (string, error) {
	if s, ok := c.Get(middleware.CtxEmail).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("missing email claim")
}

func ctxUint(c echo.Context, key string) (uint64, error) {
	switch t := c.Get(key).(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// pathID parses the numeric :id (or named) path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// repoError maps repository sentinels onto HTTP responses. Unknown errors
// become an opaque 500; the details go to the log, not the client.
func repoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrConflictDelete):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrOrganizationNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrTicketTypeNotFound),
		errors.Is(err, repository.ErrPassTypeNotFound),
		errors.Is(err, repository.ErrPackageNotFound),
		errors.Is(err, repository.ErrCourseNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrCampaignNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		c.Logger().Errorf("handler: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/localgraph/backend/internal/server/middleware"
	"github.com/localgraph/backend/pkg/apperr"
	"github.com/localgraph/backend/pkg/supervisor"
)

// StartIndexingHandler launches a new indexing run, rejecting with 409 if
// one is already in progress.
func StartIndexingHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	accepted, reason := app.Supervisor.Start(c.Request().Context())
	if !accepted {
		return respondError(c, apperr.Conflictf("%s", reason))
	}

	status := app.Supervisor.Status()
	return c.JSON(http.StatusOK, indexingStatusResponse(status))
}

// IndexingStatusHandler returns the current job snapshot.
func IndexingStatusHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	status := app.Supervisor.Status()
	return c.JSON(http.StatusOK, indexingStatusResponse(status))
}

// indexingStatusResponse renders the state-machine snapshot in the shape
// both /api/indexing/start and /api/indexing/status return.
func indexingStatusResponse(status supervisor.Status) map[string]any {
	return map[string]any{
		"is_indexing": status.IsRunning,
		"progress":    status.Progress,
		"message":     status.Message,
	}
}

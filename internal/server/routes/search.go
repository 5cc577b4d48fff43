package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/localgraph/backend/internal/server/middleware"
)

type searchRequest struct {
	Query          string `json:"query" validate:"required"`
	CommunityLevel int    `json:"community_level"`
	ResponseType   string `json:"response_type"`
}

// GlobalSearchHandler answers corpus-wide questions from community-level
// summaries.
func GlobalSearchHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	req := new(searchRequest)
	if err := c.Bind(req); err != nil {
		return respondError(c, badRequest("invalid search request body"))
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, badRequest("query is required"))
	}

	result, err := app.Search.GlobalSearch(c.Request().Context(), req.Query, req.CommunityLevel, req.ResponseType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// LocalSearchHandler answers questions about a specific entity neighborhood.
func LocalSearchHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	req := new(searchRequest)
	if err := c.Bind(req); err != nil {
		return respondError(c, badRequest("invalid search request body"))
	}
	if err := c.Validate(req); err != nil {
		return respondError(c, badRequest("query is required"))
	}

	result, err := app.Search.LocalSearch(c.Request().Context(), req.Query, req.CommunityLevel, req.ResponseType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SearchSuggestionsHandler returns static prompt suggestions for the UI.
func SearchSuggestionsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	suggestions := app.Search.Suggestions(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{"suggestions": suggestions})
}

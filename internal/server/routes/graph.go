package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/localgraph/backend/internal/server/middleware"
	"github.com/localgraph/backend/pkg/topology"
)

// CommunitiesHandler returns every community in the current generation.
func CommunitiesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	communities, err := app.Store.LoadCommunities(c.Request().Context(), -1)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"communities": communities,
		"total":       len(communities),
		"message":     "ok",
	})
}

// StatisticsHandler returns the corpus-level summary.
func StatisticsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	stats, err := app.Cache.Statistics(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// EntityTypesHandler returns the entity-type histogram.
func EntityTypesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	histogram, err := app.Cache.EntityTypeHistogram(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	total := 0
	for _, h := range histogram {
		total += h.Count
	}

	return c.JSON(http.StatusOK, map[string]any{
		"types":          histogram,
		"total_entities": total,
		"message":        "ok",
	})
}

// TopRelationshipsHandler returns the highest-weight relationships.
func TopRelationshipsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	top, err := app.Cache.TopRelationships(c.Request().Context(), 10)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"relationships": top,
		"total":         len(top),
		"message":       "ok",
	})
}

// GraphTopologyHandler returns the bounded node/link projection for the
// force-directed UI.
func GraphTopologyHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	projection, err := topology.Project(c.Request().Context(), app.Store)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, projection)
}

// EntityAnalysisHandler returns a structural profile for a single entity.
func EntityAnalysisHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	id := c.Param("id")
	analysis, err := app.Cache.EntityAnalysis(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

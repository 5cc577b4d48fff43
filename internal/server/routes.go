package server

import (
	"github.com/labstack/echo/v4"

	"github.com/localgraph/backend/internal/server/routes"
)

// RegisterRoutes wires every HTTP Edge endpoint onto e. All handlers read
// their dependencies from the AppContext injected by
// middleware.AppContextMiddleware, so no dependency is threaded through here.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", routes.HealthHandler)

	api := e.Group("/api")

	api.POST("/files/upload", routes.UploadFileHandler)
	api.GET("/files", routes.ListFilesHandler)
	api.DELETE("/files/:id", routes.DeleteFileHandler)

	api.POST("/indexing/start", routes.StartIndexingHandler)
	api.GET("/indexing/status", routes.IndexingStatusHandler)

	api.POST("/search/global", routes.GlobalSearchHandler)
	api.POST("/search/local", routes.LocalSearchHandler)
	api.GET("/search/suggestions", routes.SearchSuggestionsHandler)

	api.GET("/communities", routes.CommunitiesHandler)
	api.GET("/statistics", routes.StatisticsHandler)
	api.GET("/entity-types", routes.EntityTypesHandler)
	api.GET("/relationships/top", routes.TopRelationshipsHandler)
	api.GET("/graph/topology", routes.GraphTopologyHandler)
	api.GET("/graph/entity/:id", routes.EntityAnalysisHandler)
}

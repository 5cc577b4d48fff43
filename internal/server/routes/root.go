package routes

import "github.com/labstack/echo/v4"

// serviceVersion is reported on the health endpoint for client diagnostics.
const serviceVersion = "1.0.0"

// HealthHandler reports liveness and version for the HTTP Edge.
func HealthHandler(c echo.Context) error {
	return c.JSON(200, map[string]string{
		"status":  "ok",
		"version": serviceVersion,
	})
}

package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	mid "github.com/localgraph/backend/internal/server/middleware"
	"github.com/localgraph/backend/pkg/logger"
)

// shutdownGrace bounds how long a running indexing job gets to notice
// cancellation before the process exits anyway.
const shutdownGrace = 5 * time.Second

// CustomValidator adapts go-playground/validator to echo's Validator
// interface for struct-tag request validation.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate runs struct-tag validation on i.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// Init builds the echo app around app and serves it until the process
// receives an interrupt or termination signal.
func Init(app *mid.App) {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{app.Config.CORSOrigin},
	}))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))

	RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "port", app.Config.Port)
		if err := e.Start(":" + app.Config.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "err", err)
		}
	}()

	<-ctx.Done()

	app.Supervisor.Shutdown(shutdownGrace)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server cleanly", "err", err)
	}
}

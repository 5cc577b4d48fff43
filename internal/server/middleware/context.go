package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/localgraph/backend/internal/config"
	"github.com/localgraph/backend/pkg/ai"
	oai "github.com/localgraph/backend/pkg/ai/ollama"
	gai "github.com/localgraph/backend/pkg/ai/openai"
	"github.com/localgraph/backend/pkg/artifact"
	"github.com/localgraph/backend/pkg/logger"
	"github.com/localgraph/backend/pkg/metrics"
	"github.com/localgraph/backend/pkg/search"
	"github.com/localgraph/backend/pkg/supervisor"
	"github.com/localgraph/backend/pkg/upload"
)

// App bundles every application-scoped component the HTTP Edge dispatches
// to. It is constructed once at startup; each component is its own owner of
// mutable state, per the single-owner design in spec notes.
type App struct {
	Config     config.Config
	Store      *artifact.Store
	Cache      *metrics.Cache
	Supervisor *supervisor.Supervisor
	Intake     *upload.Intake
	Search     *search.Gateway
	AIClient   ai.SearchClient
}

// AppContext carries App through the request lifecycle, in place of a
// global service singleton.
type AppContext struct {
	echo.Context
	App *App
}

// NewAIClient selects the chat-completion adapter by configuration, mirroring
// the dual-adapter switch the AI layer was built around.
func NewAIClient(cfg config.Config) ai.SearchClient {
	switch cfg.AIAdapter {
	case "ollama":
		client, err := oai.New(oai.NewParams{
			ChatModel:             cfg.AIChatModel,
			BaseURL:               cfg.AIChatURL,
			ApiKey:                cfg.AIChatKey,
			MaxConcurrentRequests: cfg.AIMaxConcurrentReqs,
		})
		if err != nil {
			logger.Fatal("failed to create ollama client", "err", err)
		}
		return client
	default:
		return gai.New(gai.NewParams{
			ChatModel: cfg.AIChatModel,
			ChatURL:   cfg.AIChatURL,
			ChatKey:   cfg.AIChatKey,
		})
	}
}

// AppContextMiddleware injects a pre-built App into every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

package main

import (
	"context"
	"time"

	"github.com/localgraph/backend/internal/config"
	"github.com/localgraph/backend/internal/server"
	mid "github.com/localgraph/backend/internal/server/middleware"
	"github.com/localgraph/backend/internal/util"
	"github.com/localgraph/backend/pkg/artifact"
	"github.com/localgraph/backend/pkg/logger"
	"github.com/localgraph/backend/pkg/logger/console"
	"github.com/localgraph/backend/pkg/metrics"
	"github.com/localgraph/backend/pkg/search"
	"github.com/localgraph/backend/pkg/supervisor"
	"github.com/localgraph/backend/pkg/upload"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: debug}))

	cfg := config.Load()

	store := artifact.New(cfg.DataDir)
	if err := store.Reload(context.Background()); err != nil {
		logger.Warn("no artifact generation available yet", "err", err)
	}

	cache := metrics.New(store)
	aiClient := mid.NewAIClient(cfg)
	searchGateway := search.New(store, aiClient, cfg.AIChatModel, time.Duration(cfg.SearchDeadlineSeconds)*time.Second)

	sup := supervisor.New(supervisor.Config{
		Executable:  cfg.IndexerExecutable,
		BackendRoot: cfg.BackendRoot,
		OutputDir:   cfg.DataDir,
	}, store, cache, nil)

	intake, err := upload.New(cfg.InputDir, func() {
		if accepted, reason := sup.Start(context.Background()); !accepted {
			logger.Info("skipped automatic indexing after upload", "reason", reason)
		}
	})
	if err != nil {
		logger.Fatal("failed to initialize upload intake", "err", err)
	}
	sup.SetFiles(intake)

	app := &mid.App{
		Config:     cfg,
		Store:      store,
		Cache:      cache,
		Supervisor: sup,
		Intake:     intake,
		Search:     searchGateway,
		AIClient:   aiClient,
	}

	server.Init(app)
}

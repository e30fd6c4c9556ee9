package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/analysis"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/blob"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/config"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/platform/gemini"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/retention"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	store      blob.Store
	closeStore func()

	analyzer   analysis.Analyzer
	dispatcher *dispatch.Dispatcher
	worker     *worker.Worker
	sweeper    *retention.Sweeper
}

// newApplication creates an application instance with all dependencies
// initialized: blob store backend, LLM analyzer, dispatch client, worker
// pipeline and retention sweeper.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.store, app.closeStore, err = setupStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	if cfg.LLM.GeminiAPIKey == "" {
		// No key means analysis is disabled, not a boot failure: the
		// polling and cleanup surfaces still work, and dispatched tasks
		// fail in the worker with a clear error.
		logger.Warn("no Gemini API key configured; analysis tasks will fail")
		app.analyzer = analysis.Disabled{}
	} else {
		app.analyzer, err = gemini.NewAnalyzer(ctx, logger.With("component", "analyzer"), cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
		}
		logger.Info("Gemini analyzer initialized", "model", cfg.LLM.ModelName)
	}

	app.dispatcher = dispatch.NewDispatcher(
		cfg.Worker.BaseURL,
		cfg.Worker.InternalToken,
		cfg.Worker.DispatchTimeout,
		logger,
	)

	reporter := worker.NewWebhookReporter(
		cfg.Worker.WebhookURL,
		cfg.Worker.InternalToken,
		cfg.Worker.WebhookTimeout,
		logger,
	)
	app.worker = worker.New(app.analyzer, app.store, reporter, logger)

	if cfg.Retention.Enabled {
		app.sweeper = retention.NewSweeper(
			app.store,
			cfg.Retention.Schedule,
			cfg.Retention.MaxAge,
			logger,
		)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStore builds the configured blob store backend and returns it with
// its cleanup function.
func setupStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (blob.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		logger.Warn("using in-memory blob store; task records will not survive restarts")
		return blob.NewMemoryStore(), func() {}, nil

	case "redis":
		store, err := blob.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.ResultTTL)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := store.Close(); err != nil {
				logger.Error("Error closing redis store", "error", err)
			}
		}
		return store, closer, nil

	case "postgres":
		store, err := blob.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Run starts the retention sweeper and the HTTP server, blocking until
// shutdown.
func (app *application) Run(ctx context.Context) error {
	if app.sweeper != nil {
		if err := app.sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start retention sweeper: %w", err)
		}
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.closeStore != nil {
		app.closeStore()
	}
	app.logger.Info("Application shutdown completed")
}

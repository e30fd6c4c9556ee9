package main

import (
	"net/http"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api"
	apiMiddleware "github.com/YutakaKawauchi/mvv-analysis-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	baseURL := app.config.Server.BaseURL
	taskHandler := api.NewTaskHandler(app.dispatcher, baseURL, app.logger)
	statusHandler := api.NewStatusHandler(app.store, app.logger)
	cleanupHandler := api.NewCleanupHandler(app.store, app.logger)
	webhookHandler := api.NewWebhookHandler(app.store, app.logger)
	workerHandler := api.NewWorkerHandler(app.worker, app.logger)

	// Public API: submission, polling, cleanup.
	r.Route("/api", func(r chi.Router) {
		r.Post("/start-async-task", taskHandler.StartTask)
		r.Get("/task-status", statusHandler.GetStatus)
		r.Get("/task-result", statusHandler.GetResult)
		r.Get("/task-progress", statusHandler.GetProgress)
		r.Delete("/cleanup-task-blob", cleanupHandler.Cleanup)
	})

	// Internal routes: component-to-component only, shared-secret guarded.
	internalAuth := apiMiddleware.NewInternalAuth(app.config.Worker.InternalToken)
	r.Route("/internal", func(r chi.Router) {
		r.Use(internalAuth.Authenticate)
		r.Post("/worker/{route}", workerHandler.Invoke)
		r.Post("/webhook-task-complete", webhookHandler.HandleCompletion)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

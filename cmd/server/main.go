// Package main implements the entry point for the MVV analysis API
// server, which runs asynchronous AI business-analysis tasks (MVV
// extraction, idea generation, idea verification) behind a polling API.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/config"
	"github.com/YutakaKawauchi/mvv-analysis-api/internal/platform/logger"
)

func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging and builds the
// application with all its dependencies wired.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store_backend", cfg.Store.Backend)

	return newApplication(ctx, cfg, appLogger)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floify-api/internal/api"
	"floify-api/internal/api/handlers"
	"floify-api/internal/app"
	"floify-api/internal/repository"
	"floify-api/internal/service"
	"floify-api/pkg/config"
	"floify-api/pkg/logger"
	"floify-api/pkg/postgres"

	"go.uber.org/zap"
)

// @title Floify API
// @version 1.0
// @description Converts mortgage documents into Floify 1003 JSON via OCR and an LLM

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7777
// @BasePath /

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Component("api")
	appLogger.Info("Starting Floify API service")

	ctx := context.Background()

	// Run history is optional
	var (
		runs       service.RunRecorder
		runHandler *handlers.RunHandler
	)
	if cfg.Database.Enabled {
		db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		runRepo := repository.NewRunRepository(db, logger.Component("runs"))
		runs = runRepo
		runHandler = handlers.NewRunHandler(runRepo, appLogger)
	} else {
		appLogger.Info("Run history disabled (DB_ENABLED=false)")
	}

	docService, cleanup, err := app.NewDocumentService(ctx, cfg, runs, logger.Component("pipeline"))
	if err != nil {
		appLogger.Fatal("Failed to initialize document pipeline", zap.Error(err))
	}
	defer cleanup()

	docHandler := handlers.NewDocumentHandler(docService, appLogger)

	server := api.SetupRouter(&cfg.Server, docHandler, runHandler, appLogger)

	// Start server
	go func() {
		addr := cfg.Server.Addr()
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := server.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

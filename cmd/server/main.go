package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/api/handlers"
	"hiredesk/internal/api/routes"
	"hiredesk/internal/caller"
	"hiredesk/internal/config"
	"hiredesk/internal/docext"
	"hiredesk/internal/llm"
	"hiredesk/internal/logging"
	"hiredesk/internal/matching"
	"hiredesk/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	adapters := make([]logging.AdapterSettings, 0, len(cfg.Logging.Adapters))
	for _, a := range cfg.Logging.Adapters {
		adapters = append(adapters, logging.AdapterSettings{
			Name:    a.Name,
			Type:    a.Type,
			Enabled: a.Enabled,
			Options: a.Options,
		})
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, adapters); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	logger := logging.GetGlobalLogger()
	logger.Info("Starting HireDesk pipeline server")

	ctx := context.Background()

	// Connect to Postgres and ensure the schema
	db, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		logger.Error("Failed to migrate database", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	searches := storage.NewSearchRepository(db)
	candidates := storage.NewCandidateRepository(db)
	calls := storage.NewCallRepository(db)
	tasks := storage.NewTaskRepository(db)

	// Run tracker: Redis when reachable, in-process otherwise
	var tracker matching.RunTracker
	redisTracker, err := matching.NewRedisRunTracker(cfg)
	if err == nil {
		if pingErr := redisTracker.Ping(ctx); pingErr != nil {
			logger.Warn("Redis unreachable, falling back to in-memory run tracking", map[string]interface{}{
				"error": pingErr.Error(),
			})
			redisTracker.Close()
			tracker = matching.NewMemoryRunTracker()
		} else {
			defer redisTracker.Close()
			tracker = redisTracker
		}
	} else {
		logger.Warn("Redis not configured, using in-memory run tracking", map[string]interface{}{
			"error": err.Error(),
		})
		tracker = matching.NewMemoryRunTracker()
	}

	// LLM provider and the background matching engine
	provider := llm.NewProvider(cfg)
	logger.Info("LLM provider ready", map[string]interface{}{"provider": provider.GetProviderName()})

	engine := matching.NewEngine(cfg, provider, searches, tracker)
	if err := engine.Start(ctx); err != nil {
		logger.Error("Failed to start matching engine", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// External calling service is optional; call endpoints report 503 when
	// it is not configured
	var dialer handlers.CallDialer
	if cfg.Caller.BaseURL != "" {
		client, err := caller.NewClient(cfg)
		if err != nil {
			logger.Error("Failed to create calling service client", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		dialer = client
	}

	deps := &handlers.Deps{
		Config:     cfg,
		Searches:   searches,
		Candidates: candidates,
		Calls:      calls,
		Tasks:      tasks,
		Engine:     engine,
		Tracker:    tracker,
		Provider:   provider,
		Caller:     dialer,
		Extractor:  docext.NewExtractor(""),
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, deps)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// In-flight matching runs get a chance to finish first
		logger.Info("Stopping matching engine...")
		if err := engine.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping matching engine", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Error("Server stopped", map[string]interface{}{"error": err.Error()})
	}
}

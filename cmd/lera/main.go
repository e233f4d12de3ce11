// lera serves the reportability advisory chat API: agents review NUREG
// and reportability manual indexes and stream recommendations to the
// client.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nuclearops/lera/pkg/api"
	"github.com/nuclearops/lera/pkg/blob"
	"github.com/nuclearops/lera/pkg/config"
	"github.com/nuclearops/lera/pkg/llm"
	"github.com/nuclearops/lera/pkg/search"
	"github.com/nuclearops/lera/pkg/telemetry"
	"github.com/nuclearops/lera/pkg/version"
)

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, continuing with existing environment", "error", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("LOG_LEVEL")),
	})))

	slog.Info("Starting lera", "version", version.Full())

	ctx := context.Background()

	// 1. Configuration
	cfg, err := config.Initialize(ctx)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Configuration loaded",
		"indexes", cfg.IndexRegistry.Names(),
		"default_orchestration", cfg.Stream.DefaultOrchestration)

	// 2. Telemetry
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("Failed to set up telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Error("Error flushing telemetry", "error", err)
		}
	}()

	// 3. Clients
	llmClient := llm.NewClient(cfg.LLM)
	searchClient := search.NewClient(cfg.Search)
	signer := blob.NewSigner(cfg.Storage)
	slog.Info("Clients initialized", "llm_deployment", cfg.LLM.Deployment)

	// 4. HTTP server
	server := api.NewServer(cfg, llmClient, searchClient, signer)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 5. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 6. Graceful shutdown: in-flight streams get a window to finish.
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

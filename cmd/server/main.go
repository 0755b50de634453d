package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/di"
	"sentimentai/voice-server/pkg/observability"
	"sentimentai/voice-server/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	// Initialize dependency injection container
	container, err := di.New(context.Background(), cfg, nil)
	if err != nil {
		stdlog.Fatalf("Failed to initialize dependency container: %v", err)
	}
	log := container.Logger

	log.Info("Starting voice server", "env", cfg.Server.Env)

	// Set up tracing and metrics
	tracerShutdown := observability.SetupTracing("voice-server")
	meterProvider := observability.SetupPrometheusMetrics()

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	// Closing live voice sessions first gives browsers their close
	// frames before the listener goes away.
	container.RelayServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}
	tracerShutdown()
	if err := meterProvider.Shutdown(ctx); err != nil {
		log.LogError(err, "Meter provider shutdown failed")
	}

	log.Info("Server exited gracefully")
}

// Package main provides the workflow lifecycle service entry point
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decisionflow-ai/decisionflow/internal/platform/config"
	"github.com/decisionflow-ai/decisionflow/internal/platform/logger"
	"github.com/decisionflow-ai/decisionflow/internal/platform/telemetry"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/server"
)

const serviceName = "workflow"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Logger)
	appLogger.Info("Starting workflow service", "version", cfg.Version, "environment", cfg.Service.Environment)

	tel, err := telemetry.New(telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		JaegerEndpoint: cfg.Telemetry.JaegerEndpoint,
		TracingEnabled: cfg.Telemetry.TracingEnabled,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize telemetry", "error", err)
	}

	srv, err := server.New(
		server.WithConfig(cfg),
		server.WithLogger(appLogger),
		server.WithTelemetry(tel),
	)
	if err != nil {
		appLogger.Fatal("Failed to create server", "error", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("HTTP server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Shutdown error", "error", err)
	}
	if err := tel.Close(); err != nil {
		appLogger.Error("Telemetry close error", "error", err)
	}

	appLogger.Info("Workflow service stopped")
}

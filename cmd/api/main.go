// Package main provides the main entry point for the Patisserie API server
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	"github.com/alchemorsel/patisserie/internal/infrastructure/container"
	"go.uber.org/fx"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv(container.ConfigPathEnv))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app := fx.New(
		fx.NopLogger, // Use our own logger instead of Fx's
		fx.Supply(cfg),
		container.CoreModule,
	)

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for an interrupt or an fx shutdown request
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"microblog/internal/config"

	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if err := app.StartMailConsumer(); err != nil {
		app.Logger.Error("failed to start mail consumer", zap.Error(err))
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.Logger.Info("starting server", zap.String("port", cfg.App.Port))
		if err := app.Fiber.Listen(cfg.App.Port); err != nil {
			app.Logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	app.Logger.Info("shutting down server")

	if err := app.Fiber.Shutdown(); err != nil {
		app.Logger.Error("error during Fiber shutdown", zap.Error(err))
	}
	app.Logger.Info("server gracefully stopped")
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/app"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/config"
	"github.com/Nazarious-ucu/vibe-trading-launch/pkg/logger"
)

// @title Vibe Trading launch list API
// @version 1.0
// @description Collects launch-list subscribers and answers questions about Vibe Trading.
// @host localhost:8000
// @BasePath /
// @securityDefinitions.basic BasicAuth
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.Log.Path, "vibe-trading-api", cfg.Log.Level)
	if err != nil {
		log.Panicf("failed to create logger: %v", err)
	}

	application := app.New(*cfg, l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Fatal().Err(err).Msg("application stopped with error")
	}
}

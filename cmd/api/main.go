package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/SirClappington/cf-graphql-demo/internal/app"
	"github.com/SirClappington/cf-graphql-demo/internal/config"
)

var logger *log.Logger

func init() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Initialize logger
	logger = log.New(os.Stdout, "[CF-GRAPHQL] ", log.LstdFlags)
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dashauth/internal/bot"
	"dashauth/pkg/logger"
	"go.uber.org/zap"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	if err := logger.Initialize(logLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		logger.Logger().Fatal("BOT_TOKEN is not set")
	}

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:8080"
	}

	b, err := bot.New(token, backendURL)
	if err != nil {
		logger.Logger().Fatal("Failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		logger.Logger().Fatal("Bot stopped with error", zap.Error(err))
	}
}

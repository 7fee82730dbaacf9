package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"dashauth/internal/api"
	"dashauth/internal/botapi"
	"dashauth/internal/middleware"
	"dashauth/internal/repository"
	"dashauth/internal/service"
	"dashauth/internal/settings"
	"dashauth/pkg/auth"
	"dashauth/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	if cfg.Auth.JWTSecret == auth.InsecureDefaultSecret {
		zapLogger.Warn("auth.jwtSecret is using the insecure default, override it in production")
	}

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	settingsStore, err := settings.NewStore(cfg.Telegram.SettingsFile)
	if err != nil {
		zapLogger.Fatal("Failed to open telegram settings store", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)

	authService := service.NewAuthService(repo, tokens)
	telegramService := service.NewTelegramService(repo, tokens, settingsStore, cfg.Server.BaseURL)
	userService := service.NewUserService(repo)
	settingsService := service.NewSettingsService(repo, settingsStore, telegramService, botapi.New, cfg.Server.BaseURL)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	authz := middleware.NewAuthorization(authService)

	root := router.Group("/")
	api.NewAuthRoutes(root, authService, telegramService, authz)
	api.NewUserRoutes(root, userService, authz)
	api.NewAdminRoutes(root, settingsService, authz)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}

package api

import (
	"errors"
	"net/http"

	"dashauth/internal/middleware"
	"dashauth/internal/service"
	"dashauth/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type adminRoutes struct {
	ss service.SettingsServiceI
}

func NewAdminRoutes(handler *gin.RouterGroup, ss service.SettingsServiceI, authz *middleware.Authorization) {
	r := &adminRoutes{ss: ss}
	h := handler.Group("/admin")
	h.Use(authz.RequireSession())
	{
		h.GET("/telegram-settings", r.GetSettings)
		h.POST("/telegram-settings", r.SaveSettings)
		h.POST("/telegram-settings/setup-webhook", r.SetupWebhook)
		h.POST("/telegram-settings/test-bot", r.TestBot)
		h.POST("/telegram-settings/simulate-auth", r.SimulateAuth)
	}
}

type botSettingsRequest struct {
	BotToken    string `json:"botToken"`
	BotUsername string `json:"botUsername"`
}

func (r *adminRoutes) GetSettings(c *gin.Context) {
	log := logger.Logger()

	report, err := r.ss.GetSettings(c.Request.Context())
	if err != nil {
		log.Error("failed to load telegram settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": report.Settings,
		"stats":    report.Stats,
	})
}

func (r *adminRoutes) SaveSettings(c *gin.Context) {
	log := logger.Logger()

	var req botSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.ss.SaveSettings(c.Request.Context(), req.BotToken, req.BotUsername)
	if err != nil {
		if errors.Is(err, service.ErrMissingSettings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bot token and username are required"})
			return
		}
		log.Error("failed to save telegram settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Telegram settings saved. Webhook registration is running in the background.",
	})
}

func (r *adminRoutes) SetupWebhook(c *gin.Context) {
	log := logger.Logger()

	var req botSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.ss.SetupWebhook(c.Request.Context(), req.BotToken, req.BotUsername)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingSettings):
			c.JSON(http.StatusBadRequest, gin.H{"error": "bot token and username are required"})
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrBotUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error("failed to set up webhook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook configured successfully"})
}

func (r *adminRoutes) TestBot(c *gin.Context) {
	log := logger.Logger()

	var req botSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	report, err := r.ss.TestBot(c.Request.Context(), req.BotToken, req.BotUsername)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingSettings):
			c.JSON(http.StatusBadRequest, gin.H{"error": "bot token and username are required"})
		case errors.Is(err, service.ErrUsernameMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrBotUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error("failed to test bot", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     report.Message,
		"webhookUrl":  report.WebhookURL,
		"expectedUrl": report.ExpectedURL,
		"issue":       report.Issue,
	})
}

func (r *adminRoutes) SimulateAuth(c *gin.Context) {
	log := logger.Logger()

	var req botSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := r.ss.SimulateAuth(c.Request.Context(), req.BotToken, req.BotUsername)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingSettings):
			c.JSON(http.StatusBadRequest, gin.H{"error": "bot token and username are required"})
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error("auth simulation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Simulated authentication completed",
		"test_user": result.User,
		"token":     result.Token,
		"is_new":    result.IsNewUser,
	})
}

package api

import (
	"errors"
	"io"
	"net/http"

	"dashauth/internal/middleware"
	"dashauth/internal/model"
	"dashauth/internal/service"
	"dashauth/pkg/logger"

	"github.com/gin-gonic/gin"
	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type authRoutes struct {
	auth     service.AuthServiceI
	telegram service.TelegramServiceI
}

func NewAuthRoutes(handler *gin.RouterGroup, auth service.AuthServiceI, telegram service.TelegramServiceI, authz *middleware.Authorization) {
	r := &authRoutes{auth: auth, telegram: telegram}
	h := handler.Group("/auth")
	{
		h.POST("/register", r.Register)
		h.POST("/login", r.Login)
		h.POST("/telegram/widget", r.TelegramWidget)
		h.POST("/telegram/webhook", r.TelegramWebhook)
		h.GET("/me", authz.RequireSession(), r.Me)
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *authRoutes) Register(c *gin.Context) {
	log := logger.Logger()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and name are required"})
		return
	}

	user, err := r.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user with this email already exists"})
			return
		}
		log.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *authRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, token, err := r.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		log.Error("failed to log in user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (r *authRoutes) TelegramWidget(c *gin.Context) {
	log := logger.Logger()

	var claim model.WidgetClaim
	if err := c.ShouldBindJSON(&claim); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := r.telegram.AuthenticateWidget(c.Request.Context(), &claim)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClaim):
			c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete telegram data"})
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "telegram signature verification failed"})
		default:
			log.Error("widget authentication failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	message := "Logged in via Telegram"
	if result.IsNewUser {
		message = "Registered via Telegram"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   message,
		"user":      result.User,
		"token":     result.Token,
		"isNewUser": result.IsNewUser,
	})
}

func (r *authRoutes) TelegramWebhook(c *gin.Context) {
	log := logger.Logger()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var update model.WebhookUpdate
	if err := gojson.Unmarshal(body, &update); err != nil {
		log.Info("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook format"})
		return
	}

	result, err := r.telegram.AuthenticateWebhook(c.Request.Context(), &update)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClaim) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook format"})
			return
		}
		log.Error("webhook authentication failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	message := "User logged in successfully"
	if result.IsNewUser {
		message = "User registered successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      message,
		"user":         result.User,
		"token":        result.Token,
		"redirect_url": result.RedirectURL,
	})
}

func (r *authRoutes) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

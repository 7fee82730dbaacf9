package api

import (
	"net/http"

	"dashauth/internal/middleware"
	"dashauth/internal/service"
	"dashauth/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type userRoutes struct {
	us service.UserServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, authz *middleware.Authorization) {
	r := &userRoutes{us: us}
	h := handler.Group("/users")
	h.Use(authz.RequireSession())
	{
		h.GET("", r.ListUsers)
	}
}

func (r *userRoutes) ListUsers(c *gin.Context) {
	log := logger.Logger()

	users, err := r.us.ListUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"dashauth/internal/model"
	"dashauth/internal/service"
	"dashauth/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userContextKey = "current_user"

type Authorization struct {
	auth service.AuthServiceI
}

func NewAuthorization(auth service.AuthServiceI) *Authorization {
	return &Authorization{auth: auth}
}

// RequireSession verifies the Bearer session token and stores the current
// public user projection in the request context.
func (a *Authorization) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		user, err := a.auth.Verify(c.Request.Context(), token)
		if err != nil {
			log.Info("session verification failed", zap.Error(err))
			status := http.StatusUnauthorized
			if errors.Is(err, service.ErrUserNotFound) {
				status = http.StatusNotFound
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser extracts the user the middleware stored, if any.
func CurrentUser(c *gin.Context) (*model.PublicUser, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.PublicUser)
	return user, ok
}

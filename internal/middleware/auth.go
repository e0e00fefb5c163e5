package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gobarber/gobarber-client/pkg/jwt"
)

const (
	// UserIDContextKey is the key under which the authenticated user ID is stored
	UserIDContextKey = "user_id"
)

var ErrUserNotFound = errors.New("user not found in context")

// BearerAuthMiddleware validates the "Authorization: Bearer <token>" header
// and stores the token subject in the context
func BearerAuthMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			_ = c.Error(fmt.Errorf("missing bearer token")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "JWT token is missing"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid bearer token: %w", err)) //nolint:errcheck
			msg := "Invalid JWT token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "JWT token expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": msg})
			c.Abort()
			return
		}

		c.Set(UserIDContextKey, claims.Subject)
		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(c *gin.Context) (string, error) {
	val, exists := c.Get(UserIDContextKey)
	if !exists {
		return "", ErrUserNotFound
	}
	id, ok := val.(string)
	if !ok || id == "" {
		return "", ErrUserNotFound
	}
	return id, nil
}

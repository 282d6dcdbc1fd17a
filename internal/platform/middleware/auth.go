package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gigbook/service-booking/internal/domain"
	"github.com/gigbook/service-booking/internal/platform/auth"
	"github.com/gigbook/service-booking/internal/platform/response"
)

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"

	bearerPrefix = "Bearer "
)

// UserChecker confirms that a token's subject still exists.
type UserChecker interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

// AuthMiddleware requires a valid bearer token and stores the caller's identity
// in the gin context. When users is non-nil, tokens for deleted users are rejected.
func AuthMiddleware(jwtManager *auth.JWTManager, users UserChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
			response.Unauthorized(c, domain.CodeAuthRequired, "No token provided. Authorization header must be: Bearer <token>")
			return
		}

		claims, err := jwtManager.Verify(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				response.Unauthorized(c, domain.CodeTokenExpired, "Token expired")
				return
			}
			response.Unauthorized(c, domain.CodeInvalidToken, "Invalid token")
			return
		}

		if users != nil {
			exists, err := users.UserExists(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Error(c, err)
				return
			}
			if !exists {
				response.Unauthorized(c, "USER_NOT_FOUND", "User not found")
				return
			}
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetUsername returns the authenticated user's name.
func GetUsername(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextKeyUsername)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/platform/response"
)

// RecoveryMiddleware turns panics into a 500 envelope.
func RecoveryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(ContextKeyRequestID)),
					zap.Stack("stack"),
				)
				response.Fail(c, http.StatusInternalServerError, "Internal server error", response.CodeInternal)
			}
		}()
		c.Next()
	}
}

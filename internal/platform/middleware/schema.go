package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gigbook/service-booking/internal/platform/response"
)

// SchemaEnsurer blocks until the database schema is current.
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// EnsureSchemaMiddleware fails requests with 503 while the schema cannot be brought up to date.
func EnsureSchemaMiddleware(guard SchemaEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.Ensure(c.Request.Context()); err != nil {
			_ = c.Error(err)
			response.Fail(c, http.StatusServiceUnavailable, "Database schema is not ready", "SCHEMA_UNAVAILABLE")
			return
		}
		c.Next()
	}
}

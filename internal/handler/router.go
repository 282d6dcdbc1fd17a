package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/application"
	"github.com/gigbook/service-booking/internal/platform/auth"
	"github.com/gigbook/service-booking/internal/platform/middleware"
)

// RouterDeps holds everything the HTTP layer is built from. Optional fields may be nil.
type RouterDeps struct {
	Bookings *application.BookingService
	Payments *application.PaymentService
	Bands    *application.BandService
	Users    *application.UserService
	JWT      *auth.JWTManager
	DB       Pinger
	Logger   *zap.Logger

	Schema         middleware.SchemaEnsurer
	Metrics        middleware.HTTPObserver
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	CORSOrigins    []string
	RequestTimeout time.Duration
	ServiceName    string
}

// NewRouter builds the gin engine with middleware and every route mounted.
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(d.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(d.Logger))
	router.Use(middleware.CORSMiddleware(d.CORSOrigins))
	if d.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(d.Metrics))
	}
	router.Use(middleware.TimeoutMiddleware(d.RequestTimeout))

	if d.DB != nil {
		NewHealthHandler(d.DB, d.ServiceName).RegisterRoutes(router)
	}
	if d.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	api := router.Group("/api")
	if d.Schema != nil {
		api.Use(middleware.EnsureSchemaMiddleware(d.Schema))
	}

	var limited []gin.HandlerFunc
	if d.RateLimiter != nil {
		limited = append(limited, d.RateLimiter.Middleware())
	}
	authMW := middleware.AuthMiddleware(d.JWT, d.Users)

	NewUserHandler(d.Users).RegisterRoutes(api, limited...)
	NewBandHandler(d.Bands).RegisterRoutes(api, authMW)
	NewBookingHandler(d.Bookings, d.Payments).RegisterRoutes(api, authMW, limited...)

	return router
}

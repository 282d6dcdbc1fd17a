package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/application"
	"github.com/gigbook/service-booking/internal/cache"
	"github.com/gigbook/service-booking/internal/config"
	bookingEvents "github.com/gigbook/service-booking/internal/events"
	"github.com/gigbook/service-booking/internal/handler"
	"github.com/gigbook/service-booking/internal/platform/auth"
	"github.com/gigbook/service-booking/internal/platform/database"
	"github.com/gigbook/service-booking/internal/platform/kafka"
	"github.com/gigbook/service-booking/internal/platform/logger"
	"github.com/gigbook/service-booking/internal/platform/metrics"
	"github.com/gigbook/service-booking/internal/platform/middleware"
	"github.com/gigbook/service-booking/internal/repository"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access database handle", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	// Run database migrations once; requests re-check through the guard
	dbURL := cfg.DBConfig.DatabaseURL()
	schema := database.NewSchemaGuard(func(context.Context) error {
		return database.RunMigrations(dbURL, log)
	}, log)
	if err := schema.Ensure(ctx); err != nil {
		log.Error("initial migration failed, will retry on first request", zap.Error(err))
	}

	m := metrics.New()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.Expiry)

	// Initialize repositories
	tx := repository.NewGormTransactor(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	bandRepo := repository.NewGormBandRepository(db)
	clientRepo := repository.NewGormClientRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	// Initialize band listing cache
	var bandCache application.BandListCache
	if cfg.RedisConfig.Addr != "" {
		redisClient := cache.NewRedisClient(cfg.RedisConfig)
		defer func() { _ = redisClient.Close() }()
		bandCache = cache.NewBandListCache(redisClient, cfg.RedisConfig.TTL)
		log.Info("band listing cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Initialize Kafka producer
	var publisher application.EventPublisher = application.NopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = bookingEvents.NewBookingEventPublisher(kafkaProducer, application.TopicBookingEvents, m)
	} else {
		log.Info("kafka disabled, booking events will not be published")
	}

	// Initialize application services
	resolver := application.NewClientResolver(clientRepo, log)
	bookingOpts := []application.BookingServiceOption{application.WithBookingMetrics(m)}
	if bandCache != nil {
		bookingOpts = append(bookingOpts, application.WithBandCache(bandCache))
	}
	bookingService := application.NewBookingService(tx, bookingRepo, bandRepo, userRepo, resolver, publisher, log, bookingOpts...)
	bandService := application.NewBandService(bandRepo, bookingRepo, userRepo, bandCache, log)
	userService := application.NewUserService(userRepo, jwtManager, log)
	paymentService := application.NewPaymentService(paymentRepo, bookingRepo, m, log)

	// Initialize and start payment event consumer in a goroutine
	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		paymentConsumer := bookingEvents.NewPaymentEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			paymentService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer")
			if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterDeps{
		Bookings:       bookingService,
		Payments:       paymentService,
		Bands:          bandService,
		Users:          userService,
		JWT:            jwtManager,
		DB:             sqlDB,
		Logger:         log,
		Schema:         schema,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		RateLimiter:    middleware.NewRateLimiter(cfg.HTTPConfig.RateLimitRPS, cfg.HTTPConfig.RateLimitBurst),
		CORSOrigins:    cfg.HTTPConfig.CORSOrigins,
		RequestTimeout: cfg.HTTPConfig.RequestTimeout,
		ServiceName:    serviceName,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPConfig.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gigbook/service-booking/internal/application"
	bookingEvents "github.com/gigbook/service-booking/internal/events"
	"github.com/gigbook/service-booking/internal/platform/auth"
	"github.com/gigbook/service-booking/internal/platform/database"
	"github.com/gigbook/service-booking/internal/platform/kafka"
	"github.com/gigbook/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds the wired-up services backed by real Postgres and Kafka.
type bookingStack struct {
	Bookings        *application.BookingService
	Bands           *application.BandService
	Users           *application.UserService
	Payments        *application.PaymentService
	Consumer        *bookingEvents.PaymentEventConsumer
	CleanupProducer func()
}

// setupPostgres starts a PostgreSQL container, applies the embedded migrations
// and returns a connected GORM DB.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())
	dbURL := fmt.Sprintf("postgres://test:test@%s/test_booking?sslmode=disable", net.JoinHostPort(pgHost, pgPort.Port()))

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbURL, zap.NewNop()), "failed to apply migrations")

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
	return db, cleanup
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, cleanupPG := setupPostgres(t)

	// confluent-local runs KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, application.TopicBookingEvents, application.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		cleanupPG()
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires the services the way the server does. With no
// brokers the stack publishes nowhere and has no consumer.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	users := repository.NewGormUserRepository(db)
	bands := repository.NewGormBandRepository(db)
	clients := repository.NewGormClientRepository(db)
	bookings := repository.NewGormBookingRepository(db)
	payments := repository.NewGormPaymentRepository(db)

	stack := &bookingStack{CleanupProducer: func() {}}

	var publisher application.EventPublisher = application.NopPublisher{}
	if len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, logger)
		publisher = bookingEvents.NewBookingEventPublisher(producer, application.TopicBookingEvents, nil)
		stack.CleanupProducer = func() { _ = producer.Close() }
	}

	stack.Bookings = application.NewBookingService(
		repository.NewGormTransactor(db),
		bookings,
		bands,
		users,
		application.NewClientResolver(clients, logger),
		publisher,
		logger,
	)
	stack.Bands = application.NewBandService(bands, bookings, users, nil, logger)
	stack.Users = application.NewUserService(users, auth.NewJWTManager("integration-secret", time.Hour), logger)
	stack.Payments = application.NewPaymentService(payments, bookings, nil, logger)

	if len(brokers) > 0 {
		groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
		stack.Consumer = bookingEvents.NewPaymentEventConsumer(brokers, groupID, stack.Payments, logger)
	}
	return stack
}

// seedUser registers a user with a unique name and returns its ID.
func seedUser(t *testing.T, stack *bookingStack) int64 {
	t.Helper()
	u, err := stack.Users.Register(context.Background(), application.CredentialsRequest{
		Username: "user-" + uuid.New().String()[:8],
		Password: "secret",
	})
	require.NoError(t, err, "failed to seed user")
	return u.ID
}

// seedBand creates an active band owned by ownerID.
func seedBand(t *testing.T, stack *bookingStack, ownerID int64, name string, price float64) int64 {
	t.Helper()
	b, err := stack.Bands.CreateBand(context.Background(), ownerID, application.BandRequest{
		BandName: name,
		Price:    &price,
	})
	require.NoError(t, err, "failed to seed band")
	return b.BandID
}

// bookingRequest builds a create request for a named client.
func bookingRequest(bandID int64, date string) application.CreateBookingRequest {
	return application.CreateBookingRequest{
		BandID:      bandID,
		ClientName:  "Dana Client",
		PhoneNumber: "555-0100",
		EventDate:   date,
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, subject int64, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, strconv.FormatInt(subject, 10), data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPayments polls the payments table until the booking has n rows.
func waitForPayments(t *testing.T, db *gorm.DB, bookingID int64, n int, timeout time.Duration) []repository.PaymentModel {
	t.Helper()
	var result []repository.PaymentModel
	require.Eventually(t, func() bool {
		var models []repository.PaymentModel
		if err := db.Where("booking_id = ?", bookingID).Find(&models).Error; err != nil {
			return false
		}
		if len(models) == n {
			result = models
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking %d did not reach %d payments", bookingID, n)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

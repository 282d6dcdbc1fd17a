package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/application"
	"github.com/gigbook/service-booking/internal/domain"
	"github.com/gigbook/service-booking/internal/platform/kafka"
)

// PaymentRecorder stores payments reported by the payment processor.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, evt application.PaymentRecordedEvent) (*application.PaymentDTO, error)
}

// PaymentEventConsumer listens to payment events and records payments against bookings.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	recorder PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	recorder PaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, application.TopicPaymentEvents, logger),
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case application.EventPaymentRecorded:
		return c.handlePaymentRecorded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentRecorded(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt application.PaymentRecordedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentRecordedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	payment, err := c.recorder.RecordPayment(ctx, evt)
	if err != nil {
		switch {
		case domain.IsKind(err, domain.KindNotFound), domain.IsKind(err, domain.KindValidation):
			c.logger.Warn("skipping payment event",
				zap.String("event_id", cloudEvent.ID),
				zap.Int64("booking_id", evt.BookingID),
				zap.Error(err),
			)
			return nil
		case domain.IsKind(err, domain.KindConflict):
			c.logger.Info("payment already recorded",
				zap.String("event_id", cloudEvent.ID),
				zap.Int64("booking_id", evt.BookingID),
			)
			return nil
		}
		c.logger.Error("failed to record payment",
			zap.Int64("booking_id", evt.BookingID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("payment recorded from event",
		zap.String("event_id", cloudEvent.ID),
		zap.Int64("booking_id", payment.BookingID),
		zap.Int64("payment_id", payment.PaymentID),
	)
	return nil
}

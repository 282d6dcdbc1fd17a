package events

import (
	"context"

	"github.com/gigbook/service-booking/internal/platform/kafka"
)

// Source identifies this service in the events it produces.
const Source = "service-booking"

// EventWriter writes an envelope to a topic.
type EventWriter interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// PublishObserver is told about the outcome of every publish.
type PublishObserver interface {
	EventPublished(eventType string, err error)
}

// BookingEventPublisher emits booking events to the booking topic.
type BookingEventPublisher struct {
	writer   EventWriter
	topic    string
	observer PublishObserver
}

// NewBookingEventPublisher creates a publisher for topic. observer may be nil.
func NewBookingEventPublisher(writer EventWriter, topic string, observer PublishObserver) *BookingEventPublisher {
	return &BookingEventPublisher{writer: writer, topic: topic, observer: observer}
}

// Publish wraps payload in a CloudEvent whose subject is key and writes it.
func (p *BookingEventPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	ce, err := kafka.NewCloudEvent(Source, eventType, key, payload)
	if err == nil {
		err = p.writer.PublishEvent(ctx, p.topic, ce)
	}
	if p.observer != nil {
		p.observer.EventPublished(eventType, err)
	}
	return err
}

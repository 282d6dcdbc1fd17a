package application

import "context"

// Transactor runs a unit of work atomically. Repositories called with the
// context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher emits integration events after a change has been committed.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
}

// BandListCache stores band directory listings keyed by their query. Get
// resolves the entry key for the current cache generation; Set writes under
// that key so an invalidation in between leaves the write unreachable.
type BandListCache interface {
	Get(ctx context.Context, query string, dest interface{}) (entryKey string, hit bool, err error)
	Set(ctx context.Context, entryKey string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// BookingMetrics counts booking outcomes.
type BookingMetrics interface {
	BookingCreated()
	BookingConflict()
}

// PaymentMetrics counts ingested payments.
type PaymentMetrics interface {
	PaymentRecorded()
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }

type nopMetrics struct{}

func (nopMetrics) BookingCreated()  {}
func (nopMetrics) BookingConflict() {}
func (nopMetrics) PaymentRecorded() {}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID int64, username string) (string, error)
}

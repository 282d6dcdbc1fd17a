package application

import "time"

// Topics and event types exchanged with other services.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"

	EventBookingCreated       = "booking.created"
	EventBookingUpdated       = "booking.updated"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingDeleted       = "booking.deleted"

	EventPaymentRecorded = "payment.recorded"
)

// BookingEvent is the payload of every booking.* event.
type BookingEvent struct {
	BookingID      int64     `json:"booking_id"`
	BandID         int64     `json:"band_id"`
	ClientID       int64     `json:"client_id"`
	EventDate      string    `json:"event_date"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	TotalAmount    *float64  `json:"total_amount"`
	DepositAmount  float64   `json:"deposit_amount"`
	BalanceDue     *float64  `json:"balance_due"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PaymentRecordedEvent is the payload of a payment.recorded event.
type PaymentRecordedEvent struct {
	BookingID     int64      `json:"booking_id"`
	Amount        float64    `json:"amount"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod *string    `json:"payment_method"`
	TransactionID *string    `json:"transaction_id"`
	PaymentType   string     `json:"payment_type"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes"`
}

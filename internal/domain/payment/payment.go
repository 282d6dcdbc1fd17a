package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/gigbook/service-booking/internal/domain"
)

// PaymentType is the role a payment plays against a booking balance.
type PaymentType string

const (
	TypeDeposit PaymentType = "deposit"
	TypePartial PaymentType = "partial"
	TypeFull    PaymentType = "full"
	TypeRefund  PaymentType = "refund"
)

// PaymentStatus is the settlement state reported by the payment provider.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

func (t PaymentType) IsValid() bool {
	switch t {
	case TypeDeposit, TypePartial, TypeFull, TypeRefund:
		return true
	}
	return false
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is a money movement recorded against a booking.
type Payment struct {
	id            int64
	bookingID     int64
	paymentDate   time.Time
	amountCents   int64
	method        *string
	transactionID *string
	paymentType   PaymentType
	status        PaymentStatus
	notes         *string
	createdAt     time.Time
}

// NewPaymentParams holds the inputs for recording a payment.
type NewPaymentParams struct {
	BookingID     int64
	PaymentDate   time.Time
	AmountCents   int64
	Method        *string
	TransactionID *string
	Type          PaymentType
	Status        PaymentStatus
	Notes         *string
}

// NewPayment validates and creates a payment. Type defaults to partial and status to completed.
func NewPayment(p NewPaymentParams) (*Payment, error) {
	if p.BookingID <= 0 {
		return nil, domain.NewValidationError("booking_id is required")
	}
	if p.AmountCents <= 0 {
		return nil, domain.NewValidationErrorWithCode(domain.CodeInvalidAmount, "amount must be positive")
	}
	if p.Type == "" {
		p.Type = TypePartial
	}
	if !p.Type.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment type: %s", p.Type))
	}
	if p.Status == "" {
		p.Status = StatusCompleted
	}
	if !p.Status.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment status: %s", p.Status))
	}

	now := time.Now().UTC()
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
	return &Payment{
		bookingID:     p.BookingID,
		paymentDate:   p.PaymentDate.UTC(),
		amountCents:   p.AmountCents,
		method:        p.Method,
		transactionID: p.TransactionID,
		paymentType:   p.Type,
		status:        p.Status,
		notes:         p.Notes,
		createdAt:     now,
	}, nil
}

// Reconstruct rebuilds a Payment from persistence data (no validation).
func Reconstruct(
	id, bookingID int64,
	paymentDate time.Time,
	amountCents int64,
	method, transactionID *string,
	paymentType PaymentType,
	status PaymentStatus,
	notes *string,
	createdAt time.Time,
) *Payment {
	return &Payment{
		id:            id,
		bookingID:     bookingID,
		paymentDate:   paymentDate,
		amountCents:   amountCents,
		method:        method,
		transactionID: transactionID,
		paymentType:   paymentType,
		status:        status,
		notes:         notes,
		createdAt:     createdAt,
	}
}

func (p *Payment) ID() int64              { return p.id }
func (p *Payment) BookingID() int64       { return p.bookingID }
func (p *Payment) PaymentDate() time.Time { return p.paymentDate }
func (p *Payment) AmountCents() int64     { return p.amountCents }
func (p *Payment) Method() *string        { return p.method }
func (p *Payment) TransactionID() *string { return p.transactionID }
func (p *Payment) Type() PaymentType      { return p.paymentType }
func (p *Payment) Status() PaymentStatus  { return p.status }
func (p *Payment) Notes() *string         { return p.notes }
func (p *Payment) CreatedAt() time.Time   { return p.createdAt }

// AssignID records the identifier generated by the store on insert.
func (p *Payment) AssignID(id int64) { p.id = id }

// PaymentRepository defines the persistence contract for payments.
type PaymentRepository interface {
	// Save persists a new payment. A repeated transaction ID is reported as a conflict.
	Save(ctx context.Context, payment *Payment) error

	// FindByBookingID lists a booking's payments, oldest first.
	FindByBookingID(ctx context.Context, bookingID int64) ([]*Payment, error)
}

package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/domain"
	bookingDomain "github.com/gigbook/service-booking/internal/domain/booking"
	paymentDomain "github.com/gigbook/service-booking/internal/domain/payment"
)

// PaymentService records payments reported by the payment processor.
type PaymentService struct {
	payments paymentDomain.PaymentRepository
	bookings bookingDomain.BookingRepository
	metrics  PaymentMetrics
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService. metrics may be nil.
func NewPaymentService(
	payments paymentDomain.PaymentRepository,
	bookings bookingDomain.BookingRepository,
	metrics PaymentMetrics,
	logger *zap.Logger,
) *PaymentService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PaymentService{payments: payments, bookings: bookings, metrics: metrics, logger: logger}
}

// RecordPayment stores a payment for an existing booking. A repeated
// transaction id is reported as a conflict.
func (s *PaymentService) RecordPayment(ctx context.Context, evt PaymentRecordedEvent) (*PaymentDTO, error) {
	if _, err := s.bookings.FindByID(ctx, evt.BookingID); err != nil {
		return nil, err
	}

	var paidAt time.Time
	if evt.PaymentDate != nil {
		paidAt = *evt.PaymentDate
	}
	p, err := paymentDomain.NewPayment(paymentDomain.NewPaymentParams{
		BookingID:     evt.BookingID,
		PaymentDate:   paidAt,
		AmountCents:   domain.ToCents(evt.Amount),
		Method:        evt.PaymentMethod,
		TransactionID: evt.TransactionID,
		Type:          paymentDomain.PaymentType(evt.PaymentType),
		Status:        paymentDomain.PaymentStatus(evt.Status),
		Notes:         evt.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}

	s.metrics.PaymentRecorded()
	s.logger.Info("payment recorded",
		zap.Int64("payment_id", p.ID()),
		zap.Int64("booking_id", p.BookingID()),
		zap.Int64("amount_cents", p.AmountCents()),
	)
	dto := toPaymentDTO(p)
	return &dto, nil
}

// ListPayments returns a booking's payments, oldest first.
func (s *PaymentService) ListPayments(ctx context.Context, bookingID int64) ([]PaymentDTO, error) {
	if _, err := s.bookings.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}
	payments, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		out[i] = toPaymentDTO(p)
	}
	return out, nil
}

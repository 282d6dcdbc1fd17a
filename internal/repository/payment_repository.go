package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gigbook/service-booking/internal/domain"
	paymentDomain "github.com/gigbook/service-booking/internal/domain/payment"
)

// PaymentModel is the GORM model for the payments table.
type PaymentModel struct {
	ID            int64     `gorm:"column:payment_id;primaryKey;autoIncrement"`
	BookingID     int64     `gorm:"not null;index"`
	PaymentDate   time.Time `gorm:"not null"`
	Amount        float64   `gorm:"type:numeric(10,2);not null"`
	PaymentMethod *string   `gorm:"size:50"`
	TransactionID *string   `gorm:"size:100;uniqueIndex"`
	PaymentType   string    `gorm:"size:20;not null;default:partial"`
	Status        string    `gorm:"size:20;not null;default:completed"`
	Notes         *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of PaymentRepository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save persists a new payment and assigns its ID.
func (r *GormPaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	model := &PaymentModel{
		BookingID:     p.BookingID(),
		PaymentDate:   p.PaymentDate(),
		Amount:        domain.FromCents(p.AmountCents()),
		PaymentMethod: p.Method(),
		TransactionID: p.TransactionID(),
		PaymentType:   string(p.Type()),
		Status:        string(p.Status()),
		Notes:         p.Notes(),
		CreatedAt:     p.CreatedAt(),
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if mapped := classifyWriteError(err, domain.NewConflictError("payment already recorded")); mapped != nil {
			return mapped
		}
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("Booking", fmt.Sprint(p.BookingID()))
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}
	p.AssignID(model.ID)
	return nil
}

// FindByBookingID lists a booking's payments, oldest first.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID int64) ([]*paymentDomain.Payment, error) {
	var models []PaymentModel
	if err := conn(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Order("payment_date ASC").
		Order("payment_id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find payments by booking: %w", err)
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i, m := range models {
		payments[i] = paymentDomain.Reconstruct(
			m.ID,
			m.BookingID,
			m.PaymentDate,
			domain.ToCents(m.Amount),
			m.PaymentMethod,
			m.TransactionID,
			paymentDomain.PaymentType(m.PaymentType),
			paymentDomain.PaymentStatus(m.Status),
			m.Notes,
			m.CreatedAt,
		)
	}
	return payments, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gigbook/service-booking/internal/domain"
	bookingDomain "github.com/gigbook/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              int64        `gorm:"column:booking_id;primaryKey;autoIncrement"`
	BandID          int64        `gorm:"not null;index"`
	ClientID        int64        `gorm:"not null;index"`
	EventType       *string      `gorm:"size:50"`
	EventDate       time.Time    `gorm:"type:date;not null"`
	Address         *string      `gorm:"size:200"`
	Status          string       `gorm:"size:20;not null"`
	TotalAmount     *float64     `gorm:"type:numeric(10,2)"`
	DepositAmount   float64      `gorm:"type:numeric(10,2);not null"`
	BalanceDue      *float64     `gorm:"type:numeric(10,2)"`
	SpecialRequests *string      `gorm:"type:text"`
	Notes           *string      `gorm:"type:text"`
	CreatedAt       time.Time    `gorm:"not null"`
	UpdatedAt       time.Time    `gorm:"not null"`
	Band            *BandModel   `gorm:"foreignKey:BandID;references:ID"`
	Client          *ClientModel `gorm:"foreignKey:ClientID;references:ID"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := conn(ctx, r.db).Where("booking_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindDetailsByID retrieves a booking with its band and client.
func (r *GormBookingRepository) FindDetailsByID(ctx context.Context, id int64) (*bookingDomain.Details, error) {
	var model BookingModel
	if err := conn(ctx, r.db).
		Preload("Band").
		Preload("Client").
		Where("booking_id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking details by ID: %w", err)
	}
	return toDomainDetails(&model), nil
}

// FindActiveByBandAndDate returns the non-cancelled booking holding the date, or nil.
func (r *GormBookingRepository) FindActiveByBandAndDate(ctx context.Context, bandID int64, eventDate time.Time) (*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Where("band_id = ? AND event_date = CAST(? AS date) AND status <> ?",
			bandID, eventDate.Format(bookingDomain.DateLayout), string(bookingDomain.StatusCancelled)).
		Limit(1).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active booking: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return toDomainBooking(&models[0]), nil
}

// ListAll retrieves every booking, most recent event first.
func (r *GormBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Details, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Preload("Band").
		Preload("Client").
		Order("event_date DESC").
		Order("booking_id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainDetailsList(models), nil
}

// ListByBand retrieves a band's bookings ordered by event date then creation time, newest first.
func (r *GormBookingRepository) ListByBand(ctx context.Context, bandID int64) ([]*bookingDomain.Details, error) {
	var models []BookingModel
	if err := conn(ctx, r.db).
		Preload("Band").
		Preload("Client").
		Where("band_id = ?", bandID).
		Order("event_date DESC").
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list band bookings: %w", err)
	}
	return toDomainDetailsList(models), nil
}

// ListByOwner retrieves a page of bookings whose band is owned by the filter's owner.
func (r *GormBookingRepository) ListByOwner(ctx context.Context, filter bookingDomain.ListFilter, page domain.PageRequest) ([]*bookingDomain.Details, int64, error) {
	var total int64
	if err := conn(ctx, r.db).
		Model(&BookingModel{}).
		Scopes(ownedBy(filter)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	if err := conn(ctx, r.db).
		Select("bookings.*").
		Scopes(ownedBy(filter)).
		Preload("Band").
		Preload("Client").
		Order("bookings.created_at DESC").
		Order("bookings.booking_id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	return toDomainDetailsList(models), total, nil
}

// StatsByOwner counts owner-scoped bookings per status in a single aggregate query.
func (r *GormBookingRepository) StatsByOwner(ctx context.Context, filter bookingDomain.ListFilter) (bookingDomain.Stats, error) {
	query, args, err := statsQuery(filter).ToSql()
	if err != nil {
		return bookingDomain.Stats{}, fmt.Errorf("failed to build booking stats query: %w", err)
	}

	var row struct {
		Total     int64
		Confirmed int64
		Pending   int64
		Completed int64
	}
	if err := conn(ctx, r.db).Raw(query, args...).Scan(&row).Error; err != nil {
		return bookingDomain.Stats{}, fmt.Errorf("failed to compute booking stats: %w", err)
	}

	return bookingDomain.Stats{
		Total:     row.Total,
		Confirmed: row.Confirmed,
		Pending:   row.Pending,
		Completed: row.Completed,
	}, nil
}

// BookedBandIDs returns the bands holding a non-cancelled booking on the date.
func (r *GormBookingRepository) BookedBandIDs(ctx context.Context, eventDate time.Time) ([]int64, error) {
	var ids []int64
	if err := conn(ctx, r.db).
		Model(&BookingModel{}).
		Where("event_date = CAST(? AS date) AND status <> ?",
			eventDate.Format(bookingDomain.DateLayout), string(bookingDomain.StatusCancelled)).
		Distinct().
		Pluck("band_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to find booked bands: %w", err)
	}
	return ids, nil
}

// Save persists a new booking and assigns its ID.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		if mapped := classifyWriteError(err, duplicateBookingError()); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	bk.AssignID(model.ID)
	return nil
}

// Update persists changes to an existing booking. The booking ID is never rewritten.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	result := conn(ctx, r.db).
		Model(&BookingModel{}).
		Where("booking_id = ?", model.ID).
		Updates(map[string]interface{}{
			"band_id":          model.BandID,
			"client_id":        model.ClientID,
			"event_type":       model.EventType,
			"event_date":       model.EventDate,
			"address":          model.Address,
			"status":           model.Status,
			"total_amount":     model.TotalAmount,
			"deposit_amount":   model.DepositAmount,
			"balance_due":      model.BalanceDue,
			"special_requests": model.SpecialRequests,
			"notes":            model.Notes,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		if mapped := classifyWriteError(result.Error, duplicateBookingError()); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(model.ID, 10))
	}
	return nil
}

// Delete removes a booking permanently. Bookings with recorded payments are protected.
func (r *GormBookingRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Where("booking_id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return &domain.DomainError{
				Kind:    domain.KindConflict,
				Code:    domain.CodeConflict,
				Message: "Booking has recorded payments and cannot be deleted",
				Err:     result.Error,
			}
		}
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	return nil
}

// ownedBy restricts a bookings query to bands owned by the filter's owner.
func ownedBy(filter bookingDomain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN bands ON bands.band_id = bookings.band_id").
			Where("bands.user_id = ?", filter.OwnerID)
		if filter.BandID != nil {
			db = db.Where("bookings.band_id = ?", *filter.BandID)
		}
		return db
	}
}

func statsQuery(filter bookingDomain.ListFilter) sq.SelectBuilder {
	q := sq.Select("COUNT(*) AS total").
		Column("COUNT(*) FILTER (WHERE bk.status = ?) AS confirmed", string(bookingDomain.StatusConfirmed)).
		Column("COUNT(*) FILTER (WHERE bk.status = ?) AS pending", string(bookingDomain.StatusPending)).
		Column("COUNT(*) FILTER (WHERE bk.status = ?) AS completed", string(bookingDomain.StatusCompleted)).
		From("bookings bk").
		Join("bands bd ON bd.band_id = bk.band_id").
		Where(sq.Eq{"bd.user_id": filter.OwnerID})
	if filter.BandID != nil {
		q = q.Where(sq.Eq{"bk.band_id": *filter.BandID})
	}
	return q
}

func duplicateBookingError() *domain.DomainError {
	return &domain.DomainError{
		Kind:    domain.KindConflict,
		Code:    domain.CodeDuplicateBooking,
		Message: "A booking already exists for this band on this date",
	}
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              bk.ID(),
		BandID:          bk.BandID(),
		ClientID:        bk.ClientID(),
		EventType:       bk.EventType(),
		EventDate:       bk.EventDate(),
		Address:         bk.Address(),
		Status:          string(bk.Status()),
		TotalAmount:     domain.AmountPtr(bk.TotalCents()),
		DepositAmount:   domain.FromCents(bk.DepositCents()),
		BalanceDue:      domain.AmountPtr(bk.BalanceDueCents()),
		SpecialRequests: bk.SpecialRequests(),
		Notes:           bk.Notes(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BandID,
		m.ClientID,
		m.EventType,
		bookingDomain.TruncateDate(m.EventDate),
		m.Address,
		bookingDomain.BookingStatus(m.Status),
		domain.CentsPtr(m.TotalAmount),
		domain.ToCents(m.DepositAmount),
		domain.CentsPtr(m.BalanceDue),
		m.SpecialRequests,
		m.Notes,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainDetails(m *BookingModel) *bookingDomain.Details {
	d := &bookingDomain.Details{Booking: toDomainBooking(m)}
	if m.Band != nil {
		d.Band = toDomainBand(m.Band)
	}
	if m.Client != nil {
		d.Client = toDomainClient(m.Client)
	}
	return d
}

func toDomainDetailsList(models []BookingModel) []*bookingDomain.Details {
	out := make([]*bookingDomain.Details, len(models))
	for i := range models {
		out[i] = toDomainDetails(&models[i])
	}
	return out
}

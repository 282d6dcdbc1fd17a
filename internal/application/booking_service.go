package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/domain"
	bandDomain "github.com/gigbook/service-booking/internal/domain/band"
	bookingDomain "github.com/gigbook/service-booking/internal/domain/booking"
	userDomain "github.com/gigbook/service-booking/internal/domain/user"
)

// CreateBookingRequest holds the data needed to create a new booking. The
// client is given either by client_id or by name and phone, each of which
// accepts an alternative key.
type CreateBookingRequest struct {
	BandID          int64    `json:"band_id"`
	ClientID        *int64   `json:"client_id"`
	ClientName      string   `json:"client_name"`
	Name            string   `json:"name"`
	PhoneNumber     string   `json:"phone_number"`
	Phone           string   `json:"phone"`
	EventType       *string  `json:"event_type"`
	EventDate       string   `json:"event_date"`
	Address         *string  `json:"address"`
	Status          string   `json:"status"`
	TotalAmount     *float64 `json:"total_amount"`
	DepositAmount   *float64 `json:"deposit_amount"`
	SpecialRequests *string  `json:"special_requests"`
	Notes           *string  `json:"notes"`
}

func (r CreateBookingRequest) clientName() string {
	if r.ClientName != "" {
		return r.ClientName
	}
	return r.Name
}

func (r CreateBookingRequest) clientPhone() string {
	if r.PhoneNumber != "" {
		return r.PhoneNumber
	}
	return r.Phone
}

// UpdateBookingRequest is a partial update. Absent fields are left untouched.
// balance_due is not accepted; it is always derived. booking_id may be sent as
// a number or a numeric string; 0 counts as absent.
type UpdateBookingRequest struct {
	BookingID       json.Number `json:"booking_id"`
	BandID          *int64      `json:"band_id"`
	ClientID        *int64      `json:"client_id"`
	EventType       *string     `json:"event_type"`
	EventDate       *string     `json:"event_date"`
	Address         *string     `json:"address"`
	Status          *string     `json:"status"`
	TotalAmount     *float64    `json:"total_amount"`
	DepositAmount   *float64    `json:"deposit_amount"`
	SpecialRequests *string     `json:"special_requests"`
	Notes           *string     `json:"notes"`
}

// bodyBookingID returns the booking_id sent in the body, or 0 when absent.
func (r UpdateBookingRequest) bodyBookingID() (int64, error) {
	if r.BookingID == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(r.BookingID.String(), 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("booking_id must be an integer")
	}
	return id, nil
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	tx        Transactor
	bookings  bookingDomain.BookingRepository
	bands     bandDomain.BandRepository
	users     userDomain.UserRepository
	clients   *ClientResolver
	publisher EventPublisher
	bandCache BandListCache
	metrics   BookingMetrics
	logger    *zap.Logger
}

// BookingServiceOption customizes a BookingService.
type BookingServiceOption func(*BookingService)

// WithBookingMetrics records booking outcomes.
func WithBookingMetrics(m BookingMetrics) BookingServiceOption {
	return func(s *BookingService) { s.metrics = m }
}

// WithBandCache invalidates cached band listings whenever availability changes.
func WithBandCache(c BandListCache) BookingServiceOption {
	return func(s *BookingService) { s.bandCache = c }
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	tx Transactor,
	bookings bookingDomain.BookingRepository,
	bands bandDomain.BandRepository,
	users userDomain.UserRepository,
	clients *ClientResolver,
	publisher EventPublisher,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	s := &BookingService{
		tx:        tx,
		bookings:  bookings,
		bands:     bands,
		users:     users,
		clients:   clients,
		publisher: publisher,
		metrics:   nopMetrics{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking validates, de-duplicates and persists a new booking in one serializable transaction.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	if req.BandID <= 0 {
		return nil, domain.NewValidationError("band_id is required")
	}
	if req.EventDate == "" {
		return nil, domain.NewValidationErrorWithCode(domain.CodeInvalidDate, "event_date is required")
	}
	eventDate, err := bookingDomain.ParseEventDate(req.EventDate)
	if err != nil {
		return nil, err
	}
	var status bookingDomain.BookingStatus
	if req.Status != "" {
		if status, err = bookingDomain.ParseBookingStatus(req.Status); err != nil {
			return nil, err
		}
	}
	total := domain.CentsPtr(req.TotalAmount)
	deposit := domain.CentsPtr(req.DepositAmount)

	var bk *bookingDomain.Booking
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		band, err := s.bands.FindByID(ctx, req.BandID)
		if err != nil {
			return err
		}

		existing, err := s.bookings.FindActiveByBandAndDate(ctx, band.ID(), eventDate)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.NewDuplicateBookingError(band.Name(), req.EventDate)
		}

		client, err := s.clients.ResolveReference(ctx, req.ClientID, req.clientName(), req.clientPhone())
		if err != nil {
			return err
		}

		if total == nil {
			total = band.PriceCents()
		}

		bk, err = bookingDomain.NewBooking(bookingDomain.NewBookingParams{
			BandID:          band.ID(),
			ClientID:        client.ID(),
			EventType:       req.EventType,
			EventDate:       eventDate,
			Address:         req.Address,
			Status:          status,
			TotalCents:      total,
			DepositCents:    deposit,
			SpecialRequests: req.SpecialRequests,
			Notes:           req.Notes,
		})
		if err != nil {
			return err
		}
		return s.bookings.Save(ctx, bk)
	})
	if err != nil {
		return nil, s.slotError(ctx, err, req.BandID, eventDate)
	}

	s.metrics.BookingCreated()
	s.logger.Info("booking created",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("band_id", bk.BandID()),
		zap.String("event_date", bk.EventDateString()),
	)
	s.afterAvailabilityChange(ctx, EventBookingCreated, toBookingEvent(bk))
	return s.GetBooking(ctx, bk.ID())
}

// UpdateBooking applies a partial update. balance_due is recomputed whenever
// the total or the deposit is part of the update.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, req UpdateBookingRequest) (*BookingDTO, error) {
	bodyID, err := req.bodyBookingID()
	if err != nil {
		return nil, err
	}
	if bodyID != 0 && bodyID != id {
		return nil, domain.NewValidationErrorWithCode(domain.CodeIDMismatch, "Booking ID in URL does not match booking_id in request body")
	}

	update := bookingDomain.Update{
		BandID:          req.BandID,
		ClientID:        req.ClientID,
		EventType:       req.EventType,
		Address:         req.Address,
		TotalCents:      domain.CentsPtr(req.TotalAmount),
		DepositCents:    domain.CentsPtr(req.DepositAmount),
		SpecialRequests: req.SpecialRequests,
		Notes:           req.Notes,
	}
	if req.EventDate != nil {
		date, err := bookingDomain.ParseEventDate(*req.EventDate)
		if err != nil {
			return nil, err
		}
		update.EventDate = &date
	}
	if req.Status != nil {
		status, err := bookingDomain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		update.Status = &status
	}

	var bk *bookingDomain.Booking
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if bk, err = s.bookings.FindByID(ctx, id); err != nil {
			return err
		}
		if req.BandID != nil {
			if _, err := s.bands.FindByID(ctx, *req.BandID); err != nil {
				return err
			}
		}
		if req.ClientID != nil {
			if _, err := s.clients.FindByID(ctx, *req.ClientID); err != nil {
				return err
			}
		}
		if err := bk.ApplyUpdate(update); err != nil {
			return err
		}
		return s.bookings.Update(ctx, bk)
	})
	if err != nil {
		if bk != nil {
			return nil, s.slotError(ctx, err, bk.BandID(), bk.EventDate())
		}
		return nil, err
	}

	s.logger.Info("booking updated", zap.Int64("booking_id", id))
	s.afterAvailabilityChange(ctx, EventBookingUpdated, toBookingEvent(bk))
	return s.GetBooking(ctx, id)
}

// UpdateBookingStatus moves a booking to any status. Aliases are accepted case-insensitively.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id int64, token string) (*BookingDTO, error) {
	status, err := bookingDomain.ParseBookingStatus(token)
	if err != nil {
		return nil, err
	}

	var (
		bk       *bookingDomain.Booking
		previous bookingDomain.BookingStatus
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if bk, err = s.bookings.FindByID(ctx, id); err != nil {
			return err
		}
		previous = bk.Status()
		if err := bk.ChangeStatus(status); err != nil {
			return err
		}
		return s.bookings.Update(ctx, bk)
	})
	if err != nil {
		if bk != nil {
			return nil, s.slotError(ctx, err, bk.BandID(), bk.EventDate())
		}
		return nil, err
	}

	s.logger.Info("booking status changed",
		zap.Int64("booking_id", id),
		zap.String("from", previous.String()),
		zap.String("to", status.String()),
	)
	evt := toBookingEvent(bk)
	evt.PreviousStatus = previous.String()
	s.afterAvailabilityChange(ctx, EventBookingStatusChanged, evt)
	return s.GetBooking(ctx, id)
}

// DeleteBooking removes a booking permanently.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	var bk *bookingDomain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if bk, err = s.bookings.FindByID(ctx, id); err != nil {
			return err
		}
		return s.bookings.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("booking deleted", zap.Int64("booking_id", id))
	s.afterAvailabilityChange(ctx, EventBookingDeleted, toBookingEvent(bk))
	return nil
}

// GetBooking returns a fully hydrated booking.
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*BookingDTO, error) {
	details, err := s.bookings.FindDetailsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(details)
	return &dto, nil
}

// ListBookings returns every booking, most recent event first.
func (s *BookingService) ListBookings(ctx context.Context) ([]BookingDTO, error) {
	details, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(details), nil
}

// ListMyBookings returns one page of bookings for bands the caller owns, with
// pagination metadata and per-status counts over the same scope.
func (s *BookingService) ListMyBookings(ctx context.Context, userID int64, bandID *int64, page, limit int) (*MyBookingsDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	pageReq, err := domain.NewPageRequest(page, limit)
	if err != nil {
		return nil, err
	}
	if bandID != nil {
		band, err := s.bands.FindByID(ctx, *bandID)
		if err != nil {
			return nil, err
		}
		if !band.IsOwnedBy(userID) {
			return nil, domain.NewForbiddenError("You do not have permission to view bookings for this band")
		}
	}

	filter := bookingDomain.ListFilter{OwnerID: userID, BandID: bandID}
	var (
		details []*bookingDomain.Details
		total   int64
		stats   bookingDomain.Stats
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if details, total, err = s.bookings.ListByOwner(ctx, filter, pageReq); err != nil {
			return err
		}
		stats, err = s.bookings.StatsByOwner(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}

	return &MyBookingsDTO{
		Bookings:   toBookingDTOs(details),
		Pagination: domain.NewPagination(pageReq, total),
		Stats: BookingStatsDTO{
			TotalBooking:   stats.Total,
			TotalConfirm:   stats.Confirmed,
			TotalPending:   stats.Pending,
			TotalCompleted: stats.Completed,
		},
	}, nil
}

// slotError rewrites a store-level slot collision into a DuplicateBooking
// naming the band and date. A serialization failure counts as a collision only
// when the slot turns out to be taken; otherwise it is returned unchanged.
func (s *BookingService) slotError(ctx context.Context, err error, bandID int64, eventDate time.Time) error {
	if domain.HasCode(err, domain.CodeDuplicateBooking) {
		s.metrics.BookingConflict()
		return domain.NewDuplicateBookingError(s.bandName(ctx, bandID), eventDate.Format(bookingDomain.DateLayout))
	}
	if domain.HasCode(err, domain.CodeConflict) {
		if existing, findErr := s.bookings.FindActiveByBandAndDate(ctx, bandID, eventDate); findErr == nil && existing != nil {
			s.metrics.BookingConflict()
			return domain.NewDuplicateBookingError(s.bandName(ctx, bandID), eventDate.Format(bookingDomain.DateLayout))
		}
	}
	return err
}

func (s *BookingService) bandName(ctx context.Context, bandID int64) string {
	band, err := s.bands.FindByID(ctx, bandID)
	if err != nil {
		return strconv.FormatInt(bandID, 10)
	}
	return band.Name()
}

// afterAvailabilityChange runs the post-commit side effects of a booking write.
// Failures are logged and never fail the request.
func (s *BookingService) afterAvailabilityChange(ctx context.Context, eventType string, evt BookingEvent) {
	if s.bandCache != nil {
		if err := s.bandCache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate band cache", zap.Error(err))
		}
	}
	if err := s.publisher.Publish(ctx, eventType, strconv.FormatInt(evt.BookingID, 10), evt); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Int64("booking_id", evt.BookingID),
			zap.Error(err),
		)
	}
}

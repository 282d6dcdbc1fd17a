package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/domain"
	bandDomain "github.com/gigbook/service-booking/internal/domain/band"
	bookingDomain "github.com/gigbook/service-booking/internal/domain/booking"
	userDomain "github.com/gigbook/service-booking/internal/domain/user"
)

// BandQuery narrows the public band listing. Date excludes bands already
// holding a non-cancelled booking on that day.
type BandQuery struct {
	Name    string
	Date    string
	OwnerID *int64
}

func (q BandQuery) cacheKey() string {
	owner := ""
	if q.OwnerID != nil {
		owner = strconv.FormatInt(*q.OwnerID, 10)
	}
	return "name=" + strings.ToLower(q.Name) + "|date=" + q.Date + "|user=" + owner
}

// BandRequest carries band attributes for create and update.
type BandRequest struct {
	BandName        string   `json:"band_name"`
	Genre           *string  `json:"genre"`
	NumberOfMembers *int     `json:"number_of_members"`
	ContactPerson   *string  `json:"contact_person"`
	Phone           *string  `json:"phone"`
	Website         *string  `json:"website"`
	Rating          *float64 `json:"rating"`
	IsActive        *bool    `json:"is_active"`
	Price           *float64 `json:"price"`
}

func (r BandRequest) params() bandDomain.Params {
	return bandDomain.Params{
		Name:            r.BandName,
		Genre:           r.Genre,
		NumberOfMembers: r.NumberOfMembers,
		ContactPerson:   r.ContactPerson,
		Phone:           r.Phone,
		Website:         r.Website,
		Rating:          r.Rating,
		IsActive:        r.IsActive,
		PriceCents:      domain.CentsPtr(r.Price),
	}
}

// BandService is the application service for the band directory.
type BandService struct {
	bands    bandDomain.BandRepository
	bookings bookingDomain.BookingRepository
	users    userDomain.UserRepository
	cache    BandListCache
	logger   *zap.Logger
}

// NewBandService creates a new BandService. cache may be nil.
func NewBandService(
	bands bandDomain.BandRepository,
	bookings bookingDomain.BookingRepository,
	users userDomain.UserRepository,
	cache BandListCache,
	logger *zap.Logger,
) *BandService {
	return &BandService{
		bands:    bands,
		bookings: bookings,
		users:    users,
		cache:    cache,
		logger:   logger,
	}
}

// ListBands returns active bands matching the query, ordered by name.
func (s *BandService) ListBands(ctx context.Context, q BandQuery) ([]BandDTO, error) {
	var date time.Time
	if q.Date != "" {
		d, err := bookingDomain.ParseEventDate(q.Date)
		if err != nil {
			return nil, domain.NewValidationErrorWithCode(domain.CodeInvalidDate, "date must be in YYYY-MM-DD format")
		}
		date = d
	}

	// The entry key is resolved before the store is read; a booking that
	// invalidates the cache meanwhile moves readers to a newer generation.
	var entryKey string
	if s.cache != nil {
		var cached []BandDTO
		key, hit, err := s.cache.Get(ctx, q.cacheKey(), &cached)
		if err != nil {
			s.logger.Warn("band cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
		entryKey = key
	}

	filter := bandDomain.ListFilter{NameContains: q.Name, OwnerID: q.OwnerID}
	if !date.IsZero() {
		booked, err := s.bookings.BookedBandIDs(ctx, date)
		if err != nil {
			return nil, err
		}
		filter.ExcludeIDs = booked
	}

	bands, err := s.bands.ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := toBandDTOs(bands)

	if entryKey != "" {
		if err := s.cache.Set(ctx, entryKey, dtos); err != nil {
			s.logger.Warn("band cache write failed", zap.Error(err))
		}
	}
	return dtos, nil
}

// ListMyBands returns the caller's active bands.
func (s *BandService) ListMyBands(ctx context.Context, userID int64) ([]BandDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	bands, err := s.bands.ListActive(ctx, bandDomain.ListFilter{OwnerID: &userID})
	if err != nil {
		return nil, err
	}
	return toBandDTOs(bands), nil
}

// GetBand returns a band with its bookings, regardless of its active flag.
func (s *BandService) GetBand(ctx context.Context, id int64) (*BandWithBookingsDTO, error) {
	band, err := s.bands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.bookings.ListByBand(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BandWithBookingsDTO{BandDTO: toBandDTO(band), Bookings: toBookingDTOs(details)}, nil
}

// ListBandBookings returns a band's bookings, latest event first.
func (s *BandService) ListBandBookings(ctx context.Context, id int64) ([]BookingDTO, error) {
	if _, err := s.bands.FindByID(ctx, id); err != nil {
		return nil, err
	}
	details, err := s.bookings.ListByBand(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(details), nil
}

// CreateBand registers a band owned by the caller.
func (s *BandService) CreateBand(ctx context.Context, userID int64, req BandRequest) (*BandDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	band, err := bandDomain.NewBand(userID, req.params())
	if err != nil {
		return nil, err
	}
	if err := s.bands.Save(ctx, band); err != nil {
		return nil, fmt.Errorf("failed to create band: %w", err)
	}

	s.logger.Info("band created", zap.Int64("band_id", band.ID()), zap.Int64("user_id", userID))
	s.invalidate(ctx)
	dto := toBandDTO(band)
	return &dto, nil
}

// UpdateBand merges the supplied attributes into a band owned by the caller.
func (s *BandService) UpdateBand(ctx context.Context, userID, id int64, req BandRequest) (*BandDTO, error) {
	band, err := s.bands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !band.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("You do not have permission to update this band")
	}
	if err := band.ApplyUpdate(req.params()); err != nil {
		return nil, err
	}
	if err := s.bands.Update(ctx, band); err != nil {
		return nil, fmt.Errorf("failed to update band: %w", err)
	}

	s.logger.Info("band updated", zap.Int64("band_id", id))
	s.invalidate(ctx)
	dto := toBandDTO(band)
	return &dto, nil
}

func (s *BandService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate band cache", zap.Error(err))
	}
}

package booking

import (
	"context"
	"time"

	"github.com/gigbook/service-booking/internal/domain"
	"github.com/gigbook/service-booking/internal/domain/band"
	"github.com/gigbook/service-booking/internal/domain/client"
)

// Details is a booking hydrated with its band and client.
type Details struct {
	Booking *Booking
	Band    *band.Band
	Client  *client.Client
}

// ListFilter scopes a listing to bookings whose band is owned by OwnerID.
type ListFilter struct {
	OwnerID int64
	BandID  *int64
}

// Stats holds independent per-status counts over one scope.
type Stats struct {
	Total     int64
	Confirmed int64
	Pending   int64
	Completed int64
}

// BookingRepository defines the persistence contract for bookings.
type BookingRepository interface {
	// FindByID retrieves a booking by its identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindDetailsByID retrieves a booking with its band and client.
	FindDetailsByID(ctx context.Context, id int64) (*Details, error)

	// FindActiveByBandAndDate returns the non-cancelled booking holding the date, or nil with no error.
	FindActiveByBandAndDate(ctx context.Context, bandID int64, eventDate time.Time) (*Booking, error)

	// ListAll retrieves every booking, most recent event first.
	ListAll(ctx context.Context) ([]*Details, error)

	// ListByBand retrieves a band's bookings ordered by event date then creation time, newest first.
	ListByBand(ctx context.Context, bandID int64) ([]*Details, error)

	// ListByOwner retrieves a page of owner-scoped bookings, newest first, with the scope's total count.
	ListByOwner(ctx context.Context, filter ListFilter, page domain.PageRequest) ([]*Details, int64, error)

	// StatsByOwner counts owner-scoped bookings per status.
	StatsByOwner(ctx context.Context, filter ListFilter) (Stats, error)

	// BookedBandIDs returns the bands holding a non-cancelled booking on the date.
	BookedBandIDs(ctx context.Context, eventDate time.Time) ([]int64, error)

	// Save persists a new booking and assigns its ID.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking permanently.
	Delete(ctx context.Context, id int64) error
}

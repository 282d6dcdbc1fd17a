package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigbook/service-booking/internal/domain"
)

func bandNames(bands []BandDTO) []string {
	names := make([]string, len(bands))
	for i, b := range bands {
		names[i] = b.BandName
	}
	return names
}

func TestListBands_AvailabilityFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "owner")
	busy := f.seedBand(t, owner, "Busy", nil)
	f.seedBand(t, owner, "Free", nil)
	cancelled := f.seedBand(t, owner, "Cancelled Gig", nil)

	f.createBooking(t, CreateBookingRequest{BandID: busy, ClientName: "X", PhoneNumber: "1", EventDate: "2025-05-05"})
	gig := f.createBooking(t, CreateBookingRequest{BandID: cancelled, ClientName: "X", PhoneNumber: "1", EventDate: "2025-05-05"})
	_, err := f.bookings.UpdateBookingStatus(ctx, gig.BookingID, "cancelled")
	require.NoError(t, err)

	all, err := f.bands.ListBands(ctx, BandQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Busy", "Cancelled Gig", "Free"}, bandNames(all))

	available, err := f.bands.ListBands(ctx, BandQuery{Date: "2025-05-05"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cancelled Gig", "Free"}, bandNames(available))

	other, err := f.bands.ListBands(ctx, BandQuery{Date: "2025-05-06"})
	require.NoError(t, err)
	assert.Len(t, other, 3)
}

func TestListBands_NameAndOwnerFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	f.seedBand(t, alice, "Jazz Trio", nil)
	f.seedBand(t, bob, "Jazzmatazz", nil)
	f.seedBand(t, bob, "Rock On", nil)

	jazz, err := f.bands.ListBands(ctx, BandQuery{Name: "JAZZ"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazz Trio", "Jazzmatazz"}, bandNames(jazz))

	bobs, err := f.bands.ListBands(ctx, BandQuery{OwnerID: &bob})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jazzmatazz", "Rock On"}, bandNames(bobs))

	_, err = f.bands.ListBands(ctx, BandQuery{Date: "2025-13-45"})
	requireCode(t, err, domain.CodeInvalidDate)
}

func TestListBands_InactiveBandsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "owner")
	id := f.seedBand(t, owner, "Retired", nil)
	_, err := f.bands.UpdateBand(ctx, owner, id, BandRequest{IsActive: ptr(false)})
	require.NoError(t, err)

	list, err := f.bands.ListBands(ctx, BandQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := f.bands.GetBand(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCreateBand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "owner")

	dto, err := f.bands.CreateBand(ctx, owner, BandRequest{BandName: "New", Price: ptr(250.5), Rating: ptr(4.5)})
	require.NoError(t, err)
	assert.NotZero(t, dto.BandID)
	assert.True(t, dto.IsActive)
	assert.Equal(t, owner, *dto.UserID)
	assert.Equal(t, 250.5, *dto.Price)
	assert.Equal(t, 1, f.cache.invalidations)

	_, err = f.bands.CreateBand(ctx, owner, BandRequest{})
	requireCode(t, err, domain.CodeValidation)

	_, err = f.bands.CreateBand(ctx, owner, BandRequest{BandName: "Bad", Rating: ptr(6.0)})
	requireCode(t, err, domain.CodeValidation)

	_, err = f.bands.CreateBand(ctx, 999, BandRequest{BandName: "Ghost"})
	requireCode(t, err, "USER_NOT_FOUND")
}

func TestUpdateBand_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	id := f.seedBand(t, alice, "Alice Band", nil)

	_, err := f.bands.UpdateBand(ctx, bob, id, BandRequest{BandName: "Stolen"})
	requireCode(t, err, domain.CodePermissionDenied)

	dto, err := f.bands.UpdateBand(ctx, alice, id, BandRequest{BandName: "Renamed", Genre: ptr("funk")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", dto.BandName)
	assert.Equal(t, "funk", *dto.Genre)

	_, err = f.bands.UpdateBand(ctx, alice, 999, BandRequest{BandName: "x"})
	requireCode(t, err, "BAND_NOT_FOUND")
}

func TestListMyBands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	f.seedBand(t, alice, "B", nil)
	f.seedBand(t, alice, "A", nil)
	f.seedBand(t, bob, "C", nil)

	mine, err := f.bands.ListMyBands(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, bandNames(mine))

	_, err = f.bands.ListMyBands(ctx, 999)
	requireCode(t, err, "USER_NOT_FOUND")
}

func TestGetBand_WithBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "owner")
	id := f.seedBand(t, owner, "Band", nil)
	f.createBooking(t, CreateBookingRequest{BandID: id, ClientName: "X", PhoneNumber: "1", EventDate: "2025-01-01"})
	f.createBooking(t, CreateBookingRequest{BandID: id, ClientName: "Y", PhoneNumber: "2", EventDate: "2025-02-01"})

	got, err := f.bands.GetBand(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Bookings, 2)
	assert.Equal(t, "2025-02-01", got.Bookings[0].EventDate)
	assert.Equal(t, "Y", got.Bookings[0].ClientName)

	bookings, err := f.bands.ListBandBookings(ctx, id)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	_, err = f.bands.GetBand(ctx, 999)
	requireCode(t, err, "BAND_NOT_FOUND")
	_, err = f.bands.ListBandBookings(ctx, 999)
	requireCode(t, err, "BAND_NOT_FOUND")
}

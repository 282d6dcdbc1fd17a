package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigbook/service-booking/internal/domain"
)

func cents(v int64) *int64 { return &v }

func str(s string) *string { return &s }

func validParams() NewBookingParams {
	return NewBookingParams{
		BandID:    1,
		ClientID:  2,
		EventDate: time.Date(2030, 5, 17, 18, 30, 0, 0, time.UTC),
	}
}

func TestNewBooking_Defaults(t *testing.T) {
	b, err := NewBooking(validParams())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, int64(0), b.DepositCents())
	assert.Nil(t, b.TotalCents())
	assert.Nil(t, b.BalanceDueCents())
	assert.Equal(t, "2030-05-17", b.EventDateString())
	assert.Equal(t, 0, b.EventDate().Hour())
}

func TestNewBooking_DerivesBalance(t *testing.T) {
	p := validParams()
	p.TotalCents = cents(150000)
	p.DepositCents = cents(50000)

	b, err := NewBooking(p)
	require.NoError(t, err)
	require.NotNil(t, b.BalanceDueCents())
	assert.Equal(t, int64(100000), *b.BalanceDueCents())
}

func TestNewBooking_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewBookingParams)
		code   string
	}{
		{"missing band", func(p *NewBookingParams) { p.BandID = 0 }, domain.CodeValidation},
		{"missing client", func(p *NewBookingParams) { p.ClientID = 0 }, domain.CodeMissingClientInfo},
		{"missing date", func(p *NewBookingParams) { p.EventDate = time.Time{} }, domain.CodeInvalidDate},
		{"negative total", func(p *NewBookingParams) { p.TotalCents = cents(-1) }, domain.CodeInvalidAmount},
		{"negative deposit", func(p *NewBookingParams) { p.DepositCents = cents(-1) }, domain.CodeInvalidAmount},
		{"unknown status", func(p *NewBookingParams) { p.Status = "tentative" }, domain.CodeInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewBooking(p)
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestApplyUpdate_RecomputesBalance(t *testing.T) {
	p := validParams()
	p.TotalCents = cents(100000)
	b, err := NewBooking(p)
	require.NoError(t, err)

	require.NoError(t, b.ApplyUpdate(Update{DepositCents: cents(25000)}))
	require.NotNil(t, b.BalanceDueCents())
	assert.Equal(t, int64(75000), *b.BalanceDueCents())

	require.NoError(t, b.ApplyUpdate(Update{TotalCents: cents(200000)}))
	assert.Equal(t, int64(175000), *b.BalanceDueCents())
}

func TestApplyUpdate_DepositWithoutTotalCountsTotalAsZero(t *testing.T) {
	b, err := NewBooking(validParams())
	require.NoError(t, err)

	require.NoError(t, b.ApplyUpdate(Update{DepositCents: cents(5000)}))
	require.NotNil(t, b.BalanceDueCents())
	assert.Equal(t, int64(-5000), *b.BalanceDueCents())
}

func TestApplyUpdate_EmptyStringsClear(t *testing.T) {
	p := validParams()
	p.Address = str("1 Main St")
	p.Notes = str("bring a tuba")
	p.SpecialRequests = str("no encores")
	b, err := NewBooking(p)
	require.NoError(t, err)

	require.NoError(t, b.ApplyUpdate(Update{Address: str(""), Notes: str(""), SpecialRequests: str("")}))
	assert.Nil(t, b.Address())
	assert.Nil(t, b.Notes())
	assert.Nil(t, b.SpecialRequests())
}

func TestApplyUpdate_LeavesAbsentFieldsAlone(t *testing.T) {
	p := validParams()
	p.TotalCents = cents(1000)
	p.Address = str("Hall B")
	b, err := NewBooking(p)
	require.NoError(t, err)
	balance := *b.BalanceDueCents()

	newDate := time.Date(2031, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.ApplyUpdate(Update{EventDate: &newDate}))

	assert.Equal(t, "2031-01-02", b.EventDateString())
	assert.Equal(t, "Hall B", *b.Address())
	assert.Equal(t, balance, *b.BalanceDueCents())
}

func TestApplyUpdate_RejectsInvalidInput(t *testing.T) {
	b, err := NewBooking(validParams())
	require.NoError(t, err)

	bad := BookingStatus("maybe")
	err = b.ApplyUpdate(Update{Status: &bad})
	assert.True(t, domain.HasCode(err, domain.CodeInvalidStatus))

	err = b.ApplyUpdate(Update{TotalCents: cents(-10)})
	assert.True(t, domain.HasCode(err, domain.CodeInvalidAmount))
	assert.Equal(t, StatusPending, b.Status())
}

func TestParseBookingStatus(t *testing.T) {
	tests := map[string]BookingStatus{
		"pending":   StatusPending,
		"Confirm":   StatusConfirmed,
		"CONFIRMED": StatusConfirmed,
		"cancel":    StatusCancelled,
		"cancelled": StatusCancelled,
		"complete":  StatusCompleted,
		"Completed": StatusCompleted,
	}
	for token, want := range tests {
		got, err := ParseBookingStatus(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}

	_, err := ParseBookingStatus("canceled")
	assert.True(t, domain.HasCode(err, domain.CodeInvalidStatus))
	_, err = ParseBookingStatus("")
	assert.True(t, domain.HasCode(err, domain.CodeInvalidStatus))
}

func TestBookingStatus_IsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.True(t, StatusCompleted.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}

func TestParseEventDate(t *testing.T) {
	d, err := ParseEventDate("2030-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 2, 28, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"2030-02-30", "28/02/2030", "2030-2-8", ""} {
		_, err := ParseEventDate(bad)
		assert.True(t, domain.HasCode(err, domain.CodeInvalidDate), bad)
	}
}

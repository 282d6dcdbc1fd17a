package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.BookingCreated()
	m.BookingCreated()
	m.BookingConflict()
	m.PaymentRecorded()
	m.EventPublished("booking.created", nil)
	m.EventPublished("booking.created", errors.New("broker down"))
	m.ObserveHTTP("POST", "/api/bookings", "201", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("booking.created", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/bookings", "201")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.BookingCreated()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "band_booking_bookings_created_total 1")
}

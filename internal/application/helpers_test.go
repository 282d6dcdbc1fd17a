package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/domain"
	bandDomain "github.com/gigbook/service-booking/internal/domain/band"
	userDomain "github.com/gigbook/service-booking/internal/domain/user"
	"github.com/gigbook/service-booking/internal/testutil"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	return m.Called(ctx, eventType, key, payload).Error(0)
}

type countingMetrics struct {
	mu                           sync.Mutex
	created, conflicts, payments int
}

func (m *countingMetrics) BookingCreated()  { m.inc(&m.created) }
func (m *countingMetrics) BookingConflict() { m.inc(&m.conflicts) }
func (m *countingMetrics) PaymentRecorded() { m.inc(&m.payments) }

func (m *countingMetrics) inc(n *int) {
	m.mu.Lock()
	*n++
	m.mu.Unlock()
}

type memCache struct {
	mu            sync.Mutex
	invalidations int
}

func (c *memCache) Get(context.Context, string, interface{}) (string, bool, error) {
	return "", false, nil
}
func (c *memCache) Set(context.Context, string, interface{}) error { return nil }
func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.invalidations++
	c.mu.Unlock()
	return nil
}

type fixture struct {
	store     *testutil.Store
	publisher *mockPublisher
	metrics   *countingMetrics
	cache     *memCache
	bookings  *BookingService
	bands     *BandService
	payments  *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	metrics := &countingMetrics{}
	cache := &memCache{}
	logger := zap.NewNop()

	resolver := NewClientResolver(store.Clients(), logger)
	return &fixture{
		store:     store,
		publisher: pub,
		metrics:   metrics,
		cache:     cache,
		bookings: NewBookingService(store, store.Bookings(), store.Bands(), store.Users(), resolver, pub, logger,
			WithBookingMetrics(metrics), WithBandCache(cache)),
		bands:    NewBandService(store.Bands(), store.Bookings(), store.Users(), cache, logger),
		payments: NewPaymentService(store.Payments(), store.Bookings(), metrics, logger),
	}
}

func (f *fixture) seedUser(t *testing.T, username string) int64 {
	t.Helper()
	u, err := userDomain.NewUser(username, "hash")
	require.NoError(t, err)
	require.NoError(t, f.store.Users().Save(context.Background(), u))
	return u.ID()
}

func (f *fixture) seedBand(t *testing.T, ownerID int64, name string, price *float64) int64 {
	t.Helper()
	b, err := bandDomain.NewBand(ownerID, bandDomain.Params{Name: name, PriceCents: domain.CentsPtr(price)})
	require.NoError(t, err)
	require.NoError(t, f.store.Bands().Save(context.Background(), b))
	return b.ID()
}

func (f *fixture) createBooking(t *testing.T, req CreateBookingRequest) *BookingDTO {
	t.Helper()
	dto, err := f.bookings.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	return dto
}

func ptr[T any](v T) *T { return &v }

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	de, ok := domain.AsDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	require.Equal(t, code, de.Code)
}

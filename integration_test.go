//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigbook/service-booking/internal/application"
	"github.com/gigbook/service-booking/internal/domain"
	paymentDomain "github.com/gigbook/service-booking/internal/domain/payment"
	"github.com/gigbook/service-booking/internal/repository"
)

func TestBooking_DuplicateSlotRejected(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	stack := setupBookingStack(t, db, nil)
	ctx := context.Background()

	owner := seedUser(t, stack)
	bandID := seedBand(t, stack, owner, "The Integrators", 1500)

	created, err := stack.Bookings.CreateBooking(ctx, bookingRequest(bandID, "2030-06-01"))
	require.NoError(t, err)
	require.NotNil(t, created.TotalAmount)
	assert.Equal(t, 1500.0, *created.TotalAmount)
	assert.Equal(t, "pending", created.Status)

	_, err = stack.Bookings.CreateBooking(ctx, bookingRequest(bandID, "2030-06-01"))
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeDuplicateBooking))
	de, ok := domain.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, `A booking already exists for band "The Integrators" on 2030-06-01. Only cancelled bookings can be replaced.`, de.Message)

	// A cancelled booking frees the slot.
	_, err = stack.Bookings.UpdateBookingStatus(ctx, created.BookingID, "cancel")
	require.NoError(t, err)
	_, err = stack.Bookings.CreateBooking(ctx, bookingRequest(bandID, "2030-06-01"))
	require.NoError(t, err)
}

func TestBooking_ConcurrentCreateHasOneWinner(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	stack := setupBookingStack(t, db, nil)

	owner := seedUser(t, stack)
	bandID := seedBand(t, stack, owner, "Race Condition", 800)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stack.Bookings.CreateBooking(context.Background(), bookingRequest(bandID, "2030-07-04"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, err := range failures {
		assert.True(t,
			domain.HasCode(err, domain.CodeDuplicateBooking) || domain.HasCode(err, domain.CodeConflict),
			"unexpected error: %v", err)
	}

	var count int64
	require.NoError(t, db.Table("bookings").
		Where("band_id = ? AND status <> ?", bandID, "cancelled").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBands_AvailabilityFilter(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	stack := setupBookingStack(t, db, nil)
	ctx := context.Background()

	owner := seedUser(t, stack)
	booked := seedBand(t, stack, owner, "Alpha Brass", 500)
	free := seedBand(t, stack, owner, "Beta Strings", 700)

	_, err := stack.Bookings.CreateBooking(ctx, bookingRequest(booked, "2030-08-15"))
	require.NoError(t, err)

	bands, err := stack.Bands.ListBands(ctx, application.BandQuery{Date: "2030-08-15"})
	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, free, bands[0].BandID)

	bands, err = stack.Bands.ListBands(ctx, application.BandQuery{Date: "2030-08-16"})
	require.NoError(t, err)
	assert.Len(t, bands, 2)

	bands, err = stack.Bands.ListBands(ctx, application.BandQuery{Name: "brass"})
	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, booked, bands[0].BandID)
}

func TestMyBookings_ScopedWithStats(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	stack := setupBookingStack(t, db, nil)
	ctx := context.Background()

	owner := seedUser(t, stack)
	other := seedUser(t, stack)
	mine := seedBand(t, stack, owner, "Mine", 100)
	theirs := seedBand(t, stack, other, "Theirs", 100)

	for _, date := range []string{"2030-01-01", "2030-01-02", "2030-01-03"} {
		_, err := stack.Bookings.CreateBooking(ctx, bookingRequest(mine, date))
		require.NoError(t, err)
	}
	b, err := stack.Bookings.CreateBooking(ctx, bookingRequest(mine, "2030-01-04"))
	require.NoError(t, err)
	_, err = stack.Bookings.UpdateBookingStatus(ctx, b.BookingID, "confirm")
	require.NoError(t, err)
	_, err = stack.Bookings.CreateBooking(ctx, bookingRequest(theirs, "2030-01-01"))
	require.NoError(t, err)

	page, err := stack.Bookings.ListMyBookings(ctx, owner, nil, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Bookings, 2)
	assert.Equal(t, int64(4), page.Pagination.TotalCount)
	assert.Equal(t, int64(2), page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNextPage)
	assert.Equal(t, int64(4), page.Stats.TotalBooking)
	assert.Equal(t, int64(1), page.Stats.TotalConfirm)
	assert.Equal(t, int64(3), page.Stats.TotalPending)
	assert.Equal(t, int64(0), page.Stats.TotalCompleted)
	for _, bk := range page.Bookings {
		assert.Equal(t, mine, bk.BandID)
		require.NotNil(t, bk.Band)
		assert.Equal(t, "Mine", bk.Band.BandName)
	}

	_, err = stack.Bookings.ListMyBookings(ctx, owner, &theirs, 1, 10)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestBooking_DeleteBlockedByPayments(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	stack := setupBookingStack(t, db, nil)
	ctx := context.Background()

	owner := seedUser(t, stack)
	bandID := seedBand(t, stack, owner, "Paid Up", 900)
	b, err := stack.Bookings.CreateBooking(ctx, bookingRequest(bandID, "2030-09-09"))
	require.NoError(t, err)

	txID := "txn-delete-1"
	_, err = stack.Payments.RecordPayment(ctx, application.PaymentRecordedEvent{
		BookingID:     b.BookingID,
		Amount:        200,
		TransactionID: &txID,
	})
	require.NoError(t, err)

	_, err = stack.Payments.RecordPayment(ctx, application.PaymentRecordedEvent{
		BookingID:     b.BookingID,
		Amount:        200,
		TransactionID: &txID,
	})
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	err = stack.Bookings.DeleteBooking(ctx, b.BookingID)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	got, err := stack.Bookings.GetBooking(ctx, b.BookingID)
	require.NoError(t, err)
	assert.Equal(t, b.BookingID, got.BookingID)
}

func TestPayment_SaveForDeletedBookingIsNotFound(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	stack := setupBookingStack(t, db, nil)
	ctx := context.Background()

	owner := seedUser(t, stack)
	bandID := seedBand(t, stack, owner, "Gone Soon", 500)
	b, err := stack.Bookings.CreateBooking(ctx, bookingRequest(bandID, "2030-10-10"))
	require.NoError(t, err)
	require.NoError(t, stack.Bookings.DeleteBooking(ctx, b.BookingID))

	p, err := paymentDomain.NewPayment(paymentDomain.NewPaymentParams{BookingID: b.BookingID, AmountCents: 1000})
	require.NoError(t, err)
	err = repository.NewGormPaymentRepository(db).Save(ctx, p)
	assert.True(t, domain.IsKind(err, domain.KindNotFound), "got %v", err)
}

func TestBookingCreated_PublishedToKafka(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()
	ctx := context.Background()

	owner := seedUser(t, stack)
	bandID := seedBand(t, stack, owner, "Event Stream", 1200)
	deposit := 300.0
	req := bookingRequest(bandID, "2030-10-10")
	req.DepositAmount = &deposit

	created, err := stack.Bookings.CreateBooking(ctx, req)
	require.NoError(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, application.TopicBookingEvents,
		application.EventBookingCreated, 15*time.Second)

	var evt application.BookingEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, created.BookingID, evt.BookingID)
	assert.Equal(t, bandID, evt.BandID)
	assert.Equal(t, "2030-10-10", evt.EventDate)
	assert.Equal(t, "pending", evt.Status)
	require.NotNil(t, evt.BalanceDue)
	assert.Equal(t, 900.0, *evt.BalanceDue)
}

func TestPaymentRecorded_ConsumedIntoPayments(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	owner := seedUser(t, stack)
	bandID := seedBand(t, stack, owner, "Cash Flow", 1000)
	b, err := stack.Bookings.CreateBooking(context.Background(), bookingRequest(bandID, "2030-11-11"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	method := "card"
	txID := "txn-kafka-1"
	evt := application.PaymentRecordedEvent{
		BookingID:     b.BookingID,
		Amount:        250.5,
		PaymentMethod: &method,
		TransactionID: &txID,
		PaymentType:   "deposit",
	}
	publishTestEvent(t, infra.KafkaBrokers, application.TopicPaymentEvents,
		"service-payment", application.EventPaymentRecorded, b.BookingID, evt)
	// Redelivery of the same transaction is ignored.
	publishTestEvent(t, infra.KafkaBrokers, application.TopicPaymentEvents,
		"service-payment", application.EventPaymentRecorded, b.BookingID, evt)

	models := waitForPayments(t, infra.DB, b.BookingID, 1, 15*time.Second)
	assert.Equal(t, 250.5, models[0].Amount)
	assert.Equal(t, "deposit", models[0].PaymentType)
	require.NotNil(t, models[0].PaymentMethod)
	assert.Equal(t, "card", *models[0].PaymentMethod)

	time.Sleep(2 * time.Second)
	payments, err := stack.Payments.ListPayments(context.Background(), b.BookingID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

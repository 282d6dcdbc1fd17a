package booking

import (
	"time"

	"github.com/gigbook/service-booking/internal/domain"
)

// DateLayout is the wire and storage format of an event date.
const DateLayout = "2006-01-02"

// Booking is the aggregate root for an event booking.
type Booking struct {
	id              int64
	bandID          int64
	clientID        int64
	eventType       *string
	eventDate       time.Time
	address         *string
	status          BookingStatus
	totalCents      *int64
	depositCents    int64
	balanceDueCents *int64
	specialRequests *string
	notes           *string
	createdAt       time.Time
	updatedAt       time.Time
}

// NewBookingParams holds the resolved inputs for a new booking.
type NewBookingParams struct {
	BandID          int64
	ClientID        int64
	EventType       *string
	EventDate       time.Time
	Address         *string
	Status          BookingStatus
	TotalCents      *int64
	DepositCents    *int64
	SpecialRequests *string
	Notes           *string
}

// NewBooking creates a booking with a derived balance. Status defaults to pending.
func NewBooking(p NewBookingParams) (*Booking, error) {
	if p.BandID <= 0 {
		return nil, domain.NewValidationError("band_id is required")
	}
	if p.ClientID <= 0 {
		return nil, domain.NewValidationErrorWithCode(domain.CodeMissingClientInfo, "client_id is required")
	}
	if p.EventDate.IsZero() {
		return nil, domain.NewValidationErrorWithCode(domain.CodeInvalidDate, "event_date is required")
	}
	if err := validateAmounts(p.TotalCents, p.DepositCents); err != nil {
		return nil, err
	}

	status := p.Status
	if status == "" {
		status = StatusPending
	}
	if !status.IsValid() {
		return nil, domain.NewValidationErrorWithCode(domain.CodeInvalidStatus, invalidStatusMessage)
	}

	var deposit int64
	if p.DepositCents != nil {
		deposit = *p.DepositCents
	}

	now := time.Now().UTC()
	b := &Booking{
		bandID:          p.BandID,
		clientID:        p.ClientID,
		eventType:       p.EventType,
		eventDate:       TruncateDate(p.EventDate),
		address:         p.Address,
		status:          status,
		totalCents:      p.TotalCents,
		depositCents:    deposit,
		specialRequests: p.SpecialRequests,
		notes:           p.Notes,
		createdAt:       now,
		updatedAt:       now,
	}
	if b.totalCents != nil {
		balance := *b.totalCents - b.depositCents
		b.balanceDueCents = &balance
	}
	return b, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, bandID, clientID int64,
	eventType *string,
	eventDate time.Time,
	address *string,
	status BookingStatus,
	totalCents *int64,
	depositCents int64,
	balanceDueCents *int64,
	specialRequests, notes *string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bandID:          bandID,
		clientID:        clientID,
		eventType:       eventType,
		eventDate:       eventDate,
		address:         address,
		status:          status,
		totalCents:      totalCents,
		depositCents:    depositCents,
		balanceDueCents: balanceDueCents,
		specialRequests: specialRequests,
		notes:           notes,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// TruncateDate drops the time-of-day so two dates compare by calendar day.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseEventDate parses a YYYY-MM-DD event date.
func ParseEventDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationErrorWithCode(domain.CodeInvalidDate, "event_date must be in YYYY-MM-DD format")
	}
	return t, nil
}

// --- Getters ---

func (b *Booking) ID() int64                { return b.id }
func (b *Booking) BandID() int64            { return b.bandID }
func (b *Booking) ClientID() int64          { return b.clientID }
func (b *Booking) EventType() *string       { return b.eventType }
func (b *Booking) EventDate() time.Time     { return b.eventDate }
func (b *Booking) Address() *string         { return b.address }
func (b *Booking) Status() BookingStatus    { return b.status }
func (b *Booking) TotalCents() *int64       { return b.totalCents }
func (b *Booking) DepositCents() int64      { return b.depositCents }
func (b *Booking) BalanceDueCents() *int64  { return b.balanceDueCents }
func (b *Booking) SpecialRequests() *string { return b.specialRequests }
func (b *Booking) Notes() *string           { return b.notes }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

// EventDateString returns the event date as YYYY-MM-DD.
func (b *Booking) EventDateString() string { return b.eventDate.Format(DateLayout) }

// --- Behavior ---

// AssignID records the identifier generated by the store on insert.
func (b *Booking) AssignID(id int64) {
	b.id = id
}

// Update carries a partial change set. Nil fields are left untouched.
type Update struct {
	BandID          *int64
	ClientID        *int64
	EventType       *string
	EventDate       *time.Time
	Address         *string
	Status          *BookingStatus
	TotalCents      *int64
	DepositCents    *int64
	SpecialRequests *string
	Notes           *string
}

// ApplyUpdate merges a change set. Empty address, special requests and notes clear the field.
// The balance is recomputed whenever the total or the deposit is part of the change set.
func (b *Booking) ApplyUpdate(u Update) error {
	if err := validateAmounts(u.TotalCents, u.DepositCents); err != nil {
		return err
	}
	if u.Status != nil && !u.Status.IsValid() {
		return domain.NewValidationErrorWithCode(domain.CodeInvalidStatus, invalidStatusMessage)
	}

	if u.BandID != nil {
		b.bandID = *u.BandID
	}
	if u.ClientID != nil {
		b.clientID = *u.ClientID
	}
	if u.EventType != nil {
		b.eventType = u.EventType
	}
	if u.EventDate != nil {
		b.eventDate = TruncateDate(*u.EventDate)
	}
	if u.Address != nil {
		b.address = blankToNil(u.Address)
	}
	if u.SpecialRequests != nil {
		b.specialRequests = blankToNil(u.SpecialRequests)
	}
	if u.Notes != nil {
		b.notes = blankToNil(u.Notes)
	}
	if u.Status != nil {
		b.status = *u.Status
	}

	if u.TotalCents != nil || u.DepositCents != nil {
		if u.TotalCents != nil {
			b.totalCents = u.TotalCents
		}
		if u.DepositCents != nil {
			b.depositCents = *u.DepositCents
		}
		var total int64
		if b.totalCents != nil {
			total = *b.totalCents
		}
		balance := total - b.depositCents
		b.balanceDueCents = &balance
	}

	b.updatedAt = time.Now().UTC()
	return nil
}

// ChangeStatus moves the booking to any canonical status.
func (b *Booking) ChangeStatus(status BookingStatus) error {
	if !status.IsValid() {
		return domain.NewValidationErrorWithCode(domain.CodeInvalidStatus, invalidStatusMessage)
	}
	b.status = status
	b.updatedAt = time.Now().UTC()
	return nil
}

func validateAmounts(total, deposit *int64) error {
	if total != nil && *total < 0 {
		return domain.NewValidationErrorWithCode(domain.CodeInvalidAmount, "total_amount must not be negative")
	}
	if deposit != nil && *deposit < 0 {
		return domain.NewValidationErrorWithCode(domain.CodeInvalidAmount, "deposit_amount must not be negative")
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

package application

import (
	"time"

	"github.com/gigbook/service-booking/internal/domain"
	"github.com/gigbook/service-booking/internal/domain/band"
	"github.com/gigbook/service-booking/internal/domain/booking"
	"github.com/gigbook/service-booking/internal/domain/client"
	"github.com/gigbook/service-booking/internal/domain/payment"
	"github.com/gigbook/service-booking/internal/domain/user"
)

// BandDTO is the response representation of a band.
type BandDTO struct {
	BandID          int64     `json:"band_id"`
	BandName        string    `json:"band_name"`
	Genre           *string   `json:"genre"`
	NumberOfMembers *int      `json:"number_of_members"`
	ContactPerson   *string   `json:"contact_person"`
	Phone           *string   `json:"phone"`
	Website         *string   `json:"website"`
	Rating          *float64  `json:"rating"`
	IsActive        bool      `json:"is_active"`
	Price           *float64  `json:"price"`
	UserID          *int64    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BandWithBookingsDTO is a band together with its flattened bookings.
type BandWithBookingsDTO struct {
	BandDTO
	Bookings []BookingDTO `json:"bookings"`
}

// BandSummaryDTO is the band block embedded in a booking.
type BandSummaryDTO struct {
	BandID          int64    `json:"band_id"`
	BandName        string   `json:"band_name"`
	Genre           *string  `json:"genre"`
	NumberOfMembers *int     `json:"number_of_members,omitempty"`
	ContactPerson   *string  `json:"contact_person"`
	Phone           *string  `json:"phone"`
	Website         *string  `json:"website,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
}

// ClientDTO is the client block embedded in a booking.
type ClientDTO struct {
	ClientID int64  `json:"client_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// BookingDTO is a fully hydrated booking. client_name and client_phone are
// copied from the client; client_address is the booking's own address.
type BookingDTO struct {
	BookingID       int64           `json:"booking_id"`
	BandID          int64           `json:"band_id"`
	ClientID        int64           `json:"client_id"`
	EventType       *string         `json:"event_type"`
	EventDate       string          `json:"event_date"`
	Address         *string         `json:"address"`
	Status          string          `json:"status"`
	TotalAmount     *float64        `json:"total_amount"`
	DepositAmount   float64         `json:"deposit_amount"`
	BalanceDue      *float64        `json:"balance_due"`
	SpecialRequests *string         `json:"special_requests"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Band            *BandSummaryDTO `json:"band,omitempty"`
	Client          *ClientDTO      `json:"client"`
	ClientName      string          `json:"client_name"`
	ClientPhone     string          `json:"client_phone"`
	ClientAddress   string          `json:"client_address"`
}

// BookingStatsDTO holds independent per-status counts over the caller's scope.
type BookingStatsDTO struct {
	TotalBooking   int64 `json:"total_booking"`
	TotalConfirm   int64 `json:"total_confirm"`
	TotalPending   int64 `json:"total_pending"`
	TotalCompleted int64 `json:"total_completed"`
}

// MyBookingsDTO is one page of the caller's bookings.
type MyBookingsDTO struct {
	Bookings   []BookingDTO      `json:"bookings"`
	Pagination domain.Pagination `json:"pagination"`
	Stats      BookingStatsDTO   `json:"stats"`
}

// UserDTO is a user without credentials.
type UserDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginDTO is the result of a successful login.
type LoginDTO struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// PaymentDTO is the response representation of a payment.
type PaymentDTO struct {
	PaymentID     int64     `json:"payment_id"`
	BookingID     int64     `json:"booking_id"`
	PaymentDate   time.Time `json:"payment_date"`
	Amount        float64   `json:"amount"`
	PaymentMethod *string   `json:"payment_method"`
	TransactionID *string   `json:"transaction_id"`
	PaymentType   string    `json:"payment_type"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// --- Mappers ---

func toBandDTO(b *band.Band) BandDTO {
	return BandDTO{
		BandID:          b.ID(),
		BandName:        b.Name(),
		Genre:           b.Genre(),
		NumberOfMembers: b.NumberOfMembers(),
		ContactPerson:   b.ContactPerson(),
		Phone:           b.Phone(),
		Website:         b.Website(),
		Rating:          b.Rating(),
		IsActive:        b.IsActive(),
		Price:           domain.AmountPtr(b.PriceCents()),
		UserID:          b.OwnerID(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toBandDTOs(bands []*band.Band) []BandDTO {
	out := make([]BandDTO, len(bands))
	for i, b := range bands {
		out[i] = toBandDTO(b)
	}
	return out
}

func toBandSummaryDTO(b *band.Band) *BandSummaryDTO {
	if b == nil {
		return nil
	}
	return &BandSummaryDTO{
		BandID:          b.ID(),
		BandName:        b.Name(),
		Genre:           b.Genre(),
		NumberOfMembers: b.NumberOfMembers(),
		ContactPerson:   b.ContactPerson(),
		Phone:           b.Phone(),
		Website:         b.Website(),
		Rating:          b.Rating(),
	}
}

func toClientDTO(c *client.Client) *ClientDTO {
	if c == nil {
		return nil
	}
	return &ClientDTO{ClientID: c.ID(), Name: c.Name(), Phone: c.Phone()}
}

func toBookingDTO(d *booking.Details) BookingDTO {
	bk := d.Booking
	dto := BookingDTO{
		BookingID:       bk.ID(),
		BandID:          bk.BandID(),
		ClientID:        bk.ClientID(),
		EventType:       bk.EventType(),
		EventDate:       bk.EventDateString(),
		Address:         bk.Address(),
		Status:          bk.Status().String(),
		TotalAmount:     domain.AmountPtr(bk.TotalCents()),
		DepositAmount:   domain.FromCents(bk.DepositCents()),
		BalanceDue:      domain.AmountPtr(bk.BalanceDueCents()),
		SpecialRequests: bk.SpecialRequests(),
		Notes:           bk.Notes(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
		Band:            toBandSummaryDTO(d.Band),
		Client:          toClientDTO(d.Client),
	}
	if d.Client != nil {
		dto.ClientName = d.Client.Name()
		dto.ClientPhone = d.Client.Phone()
	}
	if bk.Address() != nil {
		dto.ClientAddress = *bk.Address()
	}
	return dto
}

func toBookingDTOs(details []*booking.Details) []BookingDTO {
	out := make([]BookingDTO, len(details))
	for i, d := range details {
		out[i] = toBookingDTO(d)
	}
	return out
}

func toBookingEvent(bk *booking.Booking) BookingEvent {
	return BookingEvent{
		BookingID:     bk.ID(),
		BandID:        bk.BandID(),
		ClientID:      bk.ClientID(),
		EventDate:     bk.EventDateString(),
		Status:        bk.Status().String(),
		TotalAmount:   domain.AmountPtr(bk.TotalCents()),
		DepositAmount: domain.FromCents(bk.DepositCents()),
		BalanceDue:    domain.AmountPtr(bk.BalanceDueCents()),
		OccurredAt:    time.Now().UTC(),
	}
}

func toUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Username:  u.Username(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

func toPaymentDTO(p *payment.Payment) PaymentDTO {
	return PaymentDTO{
		PaymentID:     p.ID(),
		BookingID:     p.BookingID(),
		PaymentDate:   p.PaymentDate(),
		Amount:        domain.FromCents(p.AmountCents()),
		PaymentMethod: p.Method(),
		TransactionID: p.TransactionID(),
		PaymentType:   string(p.Type()),
		Status:        string(p.Status()),
		Notes:         p.Notes(),
		CreatedAt:     p.CreatedAt(),
	}
}

package booking

import (
	"strings"

	"github.com/gigbook/service-booking/internal/domain"
)

// BookingStatus represents the current state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

const invalidStatusMessage = "Invalid status. Allowed values: pending, confirmed (or confirm), cancelled (or cancel), completed (or complete)"

// statusAliases maps every accepted lower-cased token to its canonical status.
var statusAliases = map[string]BookingStatus{
	"pending":   StatusPending,
	"confirmed": StatusConfirmed,
	"confirm":   StatusConfirmed,
	"cancelled": StatusCancelled,
	"cancel":    StatusCancelled,
	"completed": StatusCompleted,
	"complete":  StatusCompleted,
}

// IsValid returns true if the status is one of the four canonical values.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsActive returns true for any status that holds the band's date.
func (s BookingStatus) IsActive() bool {
	return s != StatusCancelled
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus normalizes a status token, accepting short aliases case-insensitively.
func ParseBookingStatus(token string) (BookingStatus, error) {
	status, ok := statusAliases[strings.ToLower(token)]
	if !ok {
		return "", domain.NewValidationErrorWithCode(domain.CodeInvalidStatus, invalidStatusMessage)
	}
	return status, nil
}

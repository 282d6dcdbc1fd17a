package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
)

// Machine-readable error codes carried in the error envelope.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInvalidPage        = "INVALID_PAGE"
	CodeInvalidPageSize    = "INVALID_PAGE_SIZE"
	CodeIDMismatch         = "ID_MISMATCH"
	CodeMissingClientInfo  = "MISSING_CLIENT_INFO"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeInvalidDate        = "INVALID_DATE"
	CodeDuplicateBooking   = "DUPLICATE_BOOKING"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeConflict           = "CONFLICT"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// DomainError is a classified failure that the transport layer maps to a status code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError reports a missing entity, e.g. NewNotFoundError("Booking", "42").
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    strings.ToUpper(entity) + "_NOT_FOUND",
		Message: entity + " not found",
		Err:     fmt.Errorf("%s %s does not exist", strings.ToLower(entity), id),
	}
}

// NewValidationError reports malformed input with the generic validation code.
func NewValidationError(message string) *DomainError {
	return NewValidationErrorWithCode(CodeValidation, message)
}

// NewValidationErrorWithCode reports malformed input with a specific code.
func NewValidationErrorWithCode(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewConflictError reports a state conflict with the generic conflict code.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: CodeConflict, Message: message}
}

// NewDuplicateBookingError reports an active booking already holding the band's date.
func NewDuplicateBookingError(bandName, eventDate string) *DomainError {
	return &DomainError{
		Kind: KindConflict,
		Code: CodeDuplicateBooking,
		Message: fmt.Sprintf(
			"A booking already exists for band %q on %s. Only cancelled bookings can be replaced.",
			bandName, eventDate,
		),
	}
}

// NewForbiddenError reports an ownership violation.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Code: CodePermissionDenied, Message: message}
}

// NewUnauthorizedError reports an identity failure.
func NewUnauthorizedError(code, message string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Code: code, Message: message}
}

// AsDomainError unwraps err into a *DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}

// IsKind reports whether err carries a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}

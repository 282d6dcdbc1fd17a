// Package response writes the uniform JSON envelope used by every endpoint.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gigbook/service-booking/internal/domain"
)

// CodeInternal is reported for failures that carry no detail worth exposing.
const CodeInternal = "INTERNAL_ERROR"

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Envelope is the body of every success and failure response.
type Envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

func now() string {
	return time.Now().UTC().Format(timestampFormat)
}

// Success writes a successful envelope with the given status.
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		Timestamp:  now(),
	})
}

// OK writes a 200 envelope.
func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

// Created writes a 201 envelope.
func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

// Fail writes a failure envelope and aborts the handler chain.
func Fail(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Error:      code,
		Timestamp:  now(),
	})
}

// BadRequest writes a 400 validation failure.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message, domain.CodeValidation)
}

// Unauthorized writes a 401 failure with an identity error code.
func Unauthorized(c *gin.Context, code, message string) {
	Fail(c, http.StatusUnauthorized, message, code)
}

// Error maps err onto an envelope. Classified domain errors keep their code;
// anything else becomes a 500 carrying the error text.
func Error(c *gin.Context, err error) {
	if de, ok := domain.AsDomainError(err); ok {
		Fail(c, StatusFor(de.Kind), de.Message, de.Code)
		return
	}
	_ = c.Error(err)
	Fail(c, http.StatusInternalServerError, "Internal server error", err.Error())
}

// StatusFor returns the HTTP status for a domain error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

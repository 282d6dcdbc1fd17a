package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigbook/service-booking/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, "Bands retrieved successfully", []string{"a"})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(200), body["statusCode"])
	assert.Equal(t, "Bands retrieved successfully", body["message"])
	assert.Equal(t, []interface{}{"a"}, body["data"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, "Booking created successfully", gin.H{"booking_id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(201), decode(t, w)["statusCode"])
}

func TestError_DomainKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.NewNotFoundError("Booking", "9"), http.StatusNotFound, "BOOKING_NOT_FOUND"},
		{"validation", domain.NewValidationErrorWithCode(domain.CodeInvalidStatus, "bad"), http.StatusBadRequest, "INVALID_STATUS"},
		{"duplicate", domain.NewDuplicateBookingError("X", "2025-03-01"), http.StatusConflict, "DUPLICATE_BOOKING"},
		{"forbidden", domain.NewForbiddenError("no"), http.StatusForbidden, "PERMISSION_DENIED"},
		{"unauthorized", domain.NewUnauthorizedError(domain.CodeInvalidCredentials, "no"), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"wrapped", fmt.Errorf("outer: %w", domain.NewNotFoundError("Band", "1")), http.StatusNotFound, "BAND_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, float64(tt.status), body["statusCode"])
		})
	}
}

func TestError_Unclassified(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Equal(t, "connection refused", body["error"])
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, int64(1), ToCents(0.005))
	assert.Equal(t, int64(-1), ToCents(-0.005))
	assert.Equal(t, int64(123456789), ToCents(1234567.89))
	assert.Equal(t, 19.99, FromCents(1999))

	assert.Nil(t, CentsPtr(nil))
	assert.Nil(t, AmountPtr(nil))
	v := 12.5
	assert.Equal(t, int64(1250), *CentsPtr(&v))
}

func TestNewPageRequest(t *testing.T) {
	p, err := NewPageRequest(3, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, p.Offset())

	_, err = NewPageRequest(0, 10)
	assert.True(t, HasCode(err, CodeInvalidPage))
	_, err = NewPageRequest(1, 0)
	assert.True(t, HasCode(err, CodeInvalidPageSize))
	_, err = NewPageRequest(1, MaxPageSize+1)
	assert.True(t, HasCode(err, CodeInvalidPageSize))
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		want        Pagination
	}{
		{1, 10, 0, Pagination{CurrentPage: 1, PageSize: 10}},
		{1, 10, 25, Pagination{CurrentPage: 1, PageSize: 10, TotalCount: 25, TotalPages: 3, HasNextPage: true}},
		{3, 10, 25, Pagination{CurrentPage: 3, PageSize: 10, TotalCount: 25, TotalPages: 3, HasPreviousPage: true}},
		{5, 10, 25, Pagination{CurrentPage: 5, PageSize: 10, TotalCount: 25, TotalPages: 3, HasPreviousPage: true}},
	}
	for _, tt := range tests {
		got := NewPagination(PageRequest{Page: tt.page, Limit: tt.limit}, tt.total)
		assert.Equal(t, tt.want, got)
	}
}

func TestDomainError_Helpers(t *testing.T) {
	nf := NewNotFoundError("Booking", "42")
	assert.Equal(t, "BOOKING_NOT_FOUND", nf.Code)
	assert.Equal(t, "Booking not found", nf.Message)

	wrapped := fmt.Errorf("lookup: %w", nf)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.True(t, HasCode(wrapped, "BOOKING_NOT_FOUND"))

	de, ok := AsDomainError(wrapped)
	require.True(t, ok)
	assert.Same(t, nf, de)

	_, ok = AsDomainError(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsKind(nil, KindConflict))

	dup := NewDuplicateBookingError("Echo", "2030-01-01")
	assert.Equal(t, KindConflict, dup.Kind)
	assert.Equal(t, CodeDuplicateBooking, dup.Code)
	assert.Contains(t, dup.Message, `"Echo"`)

	assert.Equal(t, CodePermissionDenied, NewForbiddenError("no").Code)
}

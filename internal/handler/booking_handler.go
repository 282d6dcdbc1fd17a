package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gigbook/service-booking/internal/application"
	"github.com/gigbook/service-booking/internal/domain"
	"github.com/gigbook/service-booking/internal/platform/middleware"
	"github.com/gigbook/service-booking/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service  *application.BookingService
	payments *application.PaymentService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, payments *application.PaymentService) *BookingHandler {
	return &BookingHandler{service: service, payments: payments}
}

// RegisterRoutes registers all booking routes on the given router group.
// createMW runs in front of booking creation only.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc, createMW ...gin.HandlerFunc) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/my-bookings", authMW, h.ListMyBookings)
		bookings.POST("", chain(createMW, h.CreateBooking)...)
		bookings.PATCH("/:id/status", h.UpdateBookingStatus)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/payments", h.ListPayments)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Booking created successfully", result)
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	result, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bookings retrieved successfully", result)
}

// ListMyBookings handles GET /api/bookings/my-bookings.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, domain.CodeAuthRequired, "Authentication required")
		return
	}
	bandID, ok := parseOptionalID(c, "band_id", "band")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.ListMyBookings(c.Request.Context(), userID, bandID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bookings retrieved successfully", result)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking retrieved successfully", result)
}

// UpdateBooking handles PUT /api/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	id, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	var req application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking updated successfully", result)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	id, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		response.BadRequest(c, "Status is required")
		return
	}

	result, err := h.service.UpdateBookingStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking status updated successfully", result)
}

// DeleteBooking handles DELETE /api/bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking deleted successfully", nil)
}

// ListPayments handles GET /api/bookings/:id/payments.
func (h *BookingHandler) ListPayments(c *gin.Context) {
	id, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	result, err := h.payments.ListPayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payments retrieved successfully", result)
}

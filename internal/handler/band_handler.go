package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gigbook/service-booking/internal/application"
	"github.com/gigbook/service-booking/internal/domain"
	"github.com/gigbook/service-booking/internal/platform/middleware"
	"github.com/gigbook/service-booking/internal/platform/response"
)

// BandHandler handles HTTP requests for the band directory.
type BandHandler struct {
	service *application.BandService
}

// NewBandHandler creates a new BandHandler.
func NewBandHandler(service *application.BandService) *BandHandler {
	return &BandHandler{service: service}
}

// RegisterRoutes registers all band routes on the given router group.
func (h *BandHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	bands := r.Group("/bands")
	{
		bands.GET("", h.ListBands)
		bands.GET("/my-bands", authMW, h.ListMyBands)
		bands.GET("/user", authMW, h.ListMyBands)
		bands.GET("/:id/bookings", h.ListBandBookings)
		bands.GET("/:id", h.GetBand)
		bands.POST("", authMW, h.CreateBand)
		bands.PUT("/:id", authMW, h.UpdateBand)
	}
}

// ListBands handles GET /api/bands.
func (h *BandHandler) ListBands(c *gin.Context) {
	ownerID, ok := parseOptionalID(c, "user_id", "user")
	if !ok {
		return
	}

	result, err := h.service.ListBands(c.Request.Context(), application.BandQuery{
		Name:    c.Query("band_name"),
		Date:    c.Query("date"),
		OwnerID: ownerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bands retrieved successfully", result)
}

// ListMyBands handles GET /api/bands/my-bands and its /api/bands/user alias.
func (h *BandHandler) ListMyBands(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, domain.CodeAuthRequired, "Authentication required")
		return
	}

	result, err := h.service.ListMyBands(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bands retrieved successfully", result)
}

// GetBand handles GET /api/bands/:id.
func (h *BandHandler) GetBand(c *gin.Context) {
	id, ok := parseID(c, "id", "band")
	if !ok {
		return
	}

	result, err := h.service.GetBand(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Band retrieved successfully", result)
}

// ListBandBookings handles GET /api/bands/:id/bookings.
func (h *BandHandler) ListBandBookings(c *gin.Context) {
	id, ok := parseID(c, "id", "band")
	if !ok {
		return
	}

	result, err := h.service.ListBandBookings(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bookings retrieved successfully", result)
}

// CreateBand handles POST /api/bands.
func (h *BandHandler) CreateBand(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, domain.CodeAuthRequired, "Authentication required")
		return
	}

	var req application.BandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBand(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Band created successfully", result)
}

// UpdateBand handles PUT /api/bands/:id.
func (h *BandHandler) UpdateBand(c *gin.Context) {
	id, ok := parseID(c, "id", "band")
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, domain.CodeAuthRequired, "Authentication required")
		return
	}

	var req application.BandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBand(c.Request.Context(), userID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Band updated successfully", result)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gigbook/service-booking/internal/application"
	"github.com/gigbook/service-booking/internal/platform/response"
)

// UserHandler handles account registration and login.
type UserHandler struct {
	service *application.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers user routes. credentialMW runs in front of register and login.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, credentialMW ...gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.POST("/register", chain(credentialMW, h.Register)...)
		users.POST("/login", chain(credentialMW, h.Login)...)
		users.GET("", h.ListUsers)
	}
}

// Register handles POST /api/users/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req application.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "User registered successfully", result)
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req application.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", result)
}

// ListUsers handles GET /api/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	result, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Users retrieved successfully", result)
}

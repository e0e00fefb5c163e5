package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gobarber/gobarber-client/internal/models"
)

// RegistrationHandler handles account sign-up
type RegistrationHandler struct {
	service SchedulingService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(service SchedulingService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// CreateUser handles POST /users
func (h *RegistrationHandler) CreateUser(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gobarber/gobarber-client/internal/middleware"
	"github.com/gobarber/gobarber-client/internal/models"
)

type AppointmentHandler struct {
	service SchedulingService
}

func NewAppointmentHandler(service SchedulingService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// CreateAppointment handles POST /appointments
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	appt, err := h.service.CreateAppointment(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appt)
}

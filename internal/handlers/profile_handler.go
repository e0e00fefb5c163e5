package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gobarber/gobarber-client/internal/middleware"
	"github.com/gobarber/gobarber-client/internal/models"
)

type ProfileHandler struct {
	service SchedulingService
}

func NewProfileHandler(service SchedulingService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gobarber/gobarber-client/internal/middleware"
)

type ProviderHandler struct {
	service SchedulingService
}

func NewProviderHandler(service SchedulingService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// ListProviders handles GET /providers
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	providers, err := h.service.ListProviders(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, providers)
}

type dayAvailabilityQuery struct {
	Year  int `form:"year" binding:"required,min=1"`
	Month int `form:"month" binding:"required,min=1,max=12"`
	Day   int `form:"day" binding:"required,min=1,max=31"`
}

// DayAvailability handles GET /providers/:id/day-availability
func (h *ProviderHandler) DayAvailability(c *gin.Context) {
	var q dayAvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidationError(c, err)
		return
	}

	providerID := c.Param("id")
	if providerID == "" {
		respondError(c, http.StatusBadRequest, "provider id is required", fmt.Errorf("empty provider id"))
		return
	}

	slots, err := h.service.DayAvailability(c.Request.Context(), providerID, q.Year, q.Month, q.Day)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

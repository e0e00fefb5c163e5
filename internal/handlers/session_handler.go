package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gobarber/gobarber-client/internal/models"
)

// SessionHandler handles sign-in
type SessionHandler struct {
	service SchedulingService
}

func NewSessionHandler(service SchedulingService) *SessionHandler {
	return &SessionHandler{service: service}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	resp, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

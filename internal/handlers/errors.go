package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gobarber/gobarber-client/internal/validation"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
)

var bindingOnce sync.Once

// ConfigureBinding makes request binding errors name JSON fields
func ConfigureBinding() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.UseJSONFieldNames(v)
		}
	})
}

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// respondValidationError rejects a body that failed binding
func respondValidationError(c *gin.Context, err error) {
	attachError(c, err)
	details := validation.ParseValidationErrors(err)
	message := "Validation failed"
	if len(details) > 0 {
		message = details[0].Message
	}
	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": message, "details": details})
}

// respondServiceError maps a service error onto its HTTP status
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Incorrect email/password combination.", err)
	case errors.Is(err, apperrors.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "Access denied", err)
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, "This appointment is already booked", err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

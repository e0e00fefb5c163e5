package handlers

import (
	"context"

	"github.com/gobarber/gobarber-client/internal/models"
)

// SchedulingService is the business layer behind the development API
type SchedulingService interface {
	CreateSession(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error)
	CreateUser(ctx context.Context, req models.SignUpRequest) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (models.UserProfile, error)
	ListProviders(ctx context.Context, userID string) ([]models.Provider, error)
	DayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error)
	CreateAppointment(ctx context.Context, userID string, req models.CreateAppointmentRequest) (*models.Appointment, error)
}

package services

import (
	"context"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
)

// AvailabilityGateway is the part of the remote API the availability engine uses
type AvailabilityGateway interface {
	DayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error)
}

// AppointmentGateway commits bookings
type AppointmentGateway interface {
	CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error)
}

// UserGateway registers accounts
type UserGateway interface {
	CreateUser(ctx context.Context, req models.SignUpRequest) (models.UserProfile, error)
}

// ProfileGateway updates the authenticated user's profile
type ProfileGateway interface {
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error)
}

// SessionUpdater replaces the user half of the live session
type SessionUpdater interface {
	UpdateUser(ctx context.Context, user models.UserProfile) error
}

// AvailabilityServiceInterface defines the interface for day availability operations
type AvailabilityServiceInterface interface {
	FetchDayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error)
	Select(ctx context.Context, sel models.Selection) <-chan struct{}
	Current() models.DayAvailability
	Subscribe(listener func(models.DayAvailability)) func()
}

// BookingServiceInterface defines the interface for booking operations
type BookingServiceInterface interface {
	Compose(providerID string, date time.Time, hour int) (models.Booking, error)
	Submit(ctx context.Context, booking models.Booking) (*Confirmation, error)
	Book(ctx context.Context, providerID string, date time.Time, hour int) (*Confirmation, error)
	State() BookingState
}

// ProviderServiceInterface defines the interface for the provider directory
type ProviderServiceInterface interface {
	ListProviders(ctx context.Context) []models.Provider
	Leave()
}

// RegistrationServiceInterface defines the interface for account registration
type RegistrationServiceInterface interface {
	SignUp(ctx context.Context, req *models.SignUpRequest) (models.UserProfile, error)
}

// ProfileServiceInterface defines the interface for profile updates
type ProfileServiceInterface interface {
	UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (models.UserProfile, error)
}

// Ensure services implement their interfaces
var _ AvailabilityServiceInterface = (*AvailabilityService)(nil)
var _ BookingServiceInterface = (*BookingService)(nil)
var _ ProviderServiceInterface = (*ProviderService)(nil)
var _ RegistrationServiceInterface = (*RegistrationService)(nil)
var _ ProfileServiceInterface = (*ProfileService)(nil)

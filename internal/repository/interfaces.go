package repository

import (
	"context"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
)

// UserRepository stores accounts of the development API
type UserRepository interface {
	// Create stores a new user and assigns its ID and timestamps
	Create(ctx context.Context, user *models.User) error

	// GetByID fetches a user by ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail fetches a user by e-mail, case-insensitively
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update replaces a stored user
	Update(ctx context.Context, user *models.User) error

	// ListExcept returns every user but the given one, ordered by name
	ListExcept(ctx context.Context, id string) ([]*models.User, error)
}

// AppointmentRepository stores committed appointments
type AppointmentRepository interface {
	// CreateAppointment stores the appointment unless the provider is already
	// booked at the same instant, in which case it returns a conflict error
	CreateAppointment(ctx context.Context, appt *models.Appointment) error

	// ListForProvider returns the provider's appointments in [from, to)
	ListForProvider(ctx context.Context, providerID string, from, to time.Time) ([]*models.Appointment, error)
}

// Ensure the in-memory store implements the repositories
var _ UserRepository = (*MemoryStore)(nil)
var _ AppointmentRepository = (*MemoryStore)(nil)

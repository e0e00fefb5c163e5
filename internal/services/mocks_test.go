package services_test

import (
	"context"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of the remote API used by the services
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) DayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error) {
	args := m.Called(ctx, providerID, year, month, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailabilitySlot), args.Error(1)
}

func (m *MockGateway) CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockGateway) CreateUser(ctx context.Context, req models.SignUpRequest) (models.UserProfile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.UserProfile), args.Error(1)
}

func (m *MockGateway) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.UserProfile), args.Error(1)
}

func (m *MockGateway) ListProviders(ctx context.Context) ([]models.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Provider), args.Error(1)
}

// MockSessionUpdater is a mock implementation of services.SessionUpdater
type MockSessionUpdater struct {
	mock.Mock
}

func (m *MockSessionUpdater) UpdateUser(ctx context.Context, user models.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

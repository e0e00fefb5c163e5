package handlers

import (
	"context"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockSchedulingService struct {
	mock.Mock
}

func (m *MockSchedulingService) CreateSession(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResponse), args.Error(1)
}

func (m *MockSchedulingService) CreateUser(ctx context.Context, req models.SignUpRequest) (models.UserProfile, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.UserProfile), args.Error(1)
}

func (m *MockSchedulingService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (models.UserProfile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.UserProfile), args.Error(1)
}

func (m *MockSchedulingService) ListProviders(ctx context.Context, userID string) ([]models.Provider, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Provider), args.Error(1)
}

func (m *MockSchedulingService) DayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error) {
	args := m.Called(ctx, providerID, year, month, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailabilitySlot), args.Error(1)
}

func (m *MockSchedulingService) CreateAppointment(ctx context.Context, userID string, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

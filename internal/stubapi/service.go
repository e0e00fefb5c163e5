package stubapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/repository"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/gobarber/gobarber-client/pkg/jwt"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Hours are the bookable hours of a provider's day, both ends inclusive
type Hours struct {
	Opening int
	Closing int
}

// Service implements the scheduling API in memory for local development
type Service struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	tokens       *jwt.TokenManager
	hours        Hours
	location     *time.Location
	now          func() time.Time
}

// Option customises a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone in which hours of the day are counted
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func NewService(
	users repository.UserRepository,
	appointments repository.AppointmentRepository,
	tokens *jwt.TokenManager,
	hours Hours,
	opts ...Option,
) *Service {
	s := &Service{
		users:        users,
		appointments: appointments,
		tokens:       tokens,
		hours:        hours,
		location:     time.Local,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenManager returns the signer of session tokens
func (s *Service) TokenManager() *jwt.TokenManager {
	return s.tokens
}

// CreateSession checks the credentials and issues a token
func (s *Service) CreateSession(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errIncorrectCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errIncorrectCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, apperrors.InternalError("issue token")
	}

	logger.Info("Session created", zap.String("user_id", user.ID))
	return &models.SessionResponse{Token: token, User: user.Profile()}, nil
}

var errIncorrectCredentials = fmt.Errorf("incorrect email/password combination: %w", apperrors.ErrUnauthorized)

// CreateUser registers an account
func (s *Service) CreateUser(ctx context.Context, req models.SignUpRequest) (models.UserProfile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.InvalidInputError("password", "cannot be hashed")
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User registered", zap.String("user_id", user.ID))
	return user.Profile(), nil
}

// UpdateProfile changes the user's name and e-mail and, when the old
// password matches, the password
func (s *Service) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = strings.TrimSpace(req.Email)

	if req.Password != "" {
		if req.OldPassword == "" {
			return nil, apperrors.InvalidInputError("old_password", "is required to set a new password")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
			return nil, apperrors.InvalidInputError("old_password", "does not match")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.InvalidInputError("password", "cannot be hashed")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// ListProviders returns every user except the caller
func (s *Service) ListProviders(ctx context.Context, userID string) ([]models.Provider, error) {
	users, err := s.users.ListExcept(ctx, userID)
	if err != nil {
		return nil, err
	}

	providers := make([]models.Provider, 0, len(users))
	for _, u := range users {
		providers = append(providers, u.AsProvider())
	}
	return providers, nil
}

// DayAvailability marks each working hour of the day available when it is
// not booked and still in the future
func (s *Service) DayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error) {
	if _, err := s.users.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, apperrors.InvalidInputError("date", "is not a calendar date")
	}

	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, s.location)
	if start.Day() != day {
		return nil, apperrors.InvalidInputError("date", "is not a calendar date")
	}

	booked, err := s.appointments.ListForProvider(ctx, providerID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	taken := make(map[int]bool, len(booked))
	for _, a := range booked {
		taken[a.Date.In(s.location).Hour()] = true
	}

	now := s.now()
	slots := make([]models.AvailabilitySlot, 0, s.hours.Closing-s.hours.Opening+1)
	for hour := s.hours.Opening; hour <= s.hours.Closing; hour++ {
		at := time.Date(year, time.Month(month), day, hour, 0, 0, 0, s.location)
		slots = append(slots, models.AvailabilitySlot{
			Hour:      hour,
			Available: !taken[hour] && at.After(now),
		})
	}
	return slots, nil
}

// CreateAppointment books the provider at the start of the requested hour
func (s *Service) CreateAppointment(ctx context.Context, userID string, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	if req.ProviderID == userID {
		return nil, apperrors.InvalidInputError("provider_id", "you can't create an appointment with yourself")
	}
	if _, err := s.users.GetByID(ctx, req.ProviderID); err != nil {
		return nil, err
	}

	local := req.Date.In(s.location)
	at := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, s.location)
	if !at.After(s.now()) {
		return nil, apperrors.InvalidInputError("date", "you can't create an appointment on a past date")
	}
	if at.Hour() < s.hours.Opening || at.Hour() > s.hours.Closing {
		return nil, apperrors.InvalidInputError("date",
			fmt.Sprintf("appointments are only available between %02d:00 and %02d:00", s.hours.Opening, s.hours.Closing))
	}

	appt := &models.Appointment{
		ProviderID: req.ProviderID,
		UserID:     userID,
		Date:       at,
	}
	if err := s.appointments.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	logger.Info("Appointment created",
		zap.String("appointment_id", appt.ID),
		zap.String("provider_id", appt.ProviderID),
		zap.Time("date", appt.Date))
	return appt, nil
}

// SeedUser is an account created at startup
type SeedUser struct {
	Name     string
	Email    string
	Password string
}

// DefaultSeed is the set of providers a fresh development API starts with
var DefaultSeed = []SeedUser{
	{Name: "Ana Barber", Email: "ana@gobarber.test", Password: "123456"},
	{Name: "Bruno Barber", Email: "bruno@gobarber.test", Password: "123456"},
	{Name: "Carla Barber", Email: "carla@gobarber.test", Password: "123456"},
}

// Seed registers the given accounts
func (s *Service) Seed(ctx context.Context, users []SeedUser) error {
	for _, u := range users {
		if _, err := s.CreateUser(ctx, models.SignUpRequest{Name: u.Name, Email: u.Email, Password: u.Password}); err != nil {
			return fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}
	return nil
}

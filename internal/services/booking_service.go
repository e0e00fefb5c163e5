package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	"go.uber.org/zap"
)

// ErrSubmissionInProgress is returned when Submit is called while a previous
// submission has not resolved yet
var ErrSubmissionInProgress = errors.New("a booking submission is already in progress")

// BookingState is the state of the current booking attempt
type BookingState int

const (
	BookingIdle BookingState = iota
	BookingSubmitting
	BookingConfirmed
	BookingFailed
)

func (s BookingState) String() string {
	switch s {
	case BookingIdle:
		return "idle"
	case BookingSubmitting:
		return "submitting"
	case BookingConfirmed:
		return "confirmed"
	case BookingFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BookingErrorKind classifies why a booking was not committed
type BookingErrorKind int

const (
	BookingErrUnknown BookingErrorKind = iota
	BookingErrValidation
	BookingErrConflict
	BookingErrUnauthorized
	BookingErrTransport
)

func (k BookingErrorKind) String() string {
	switch k {
	case BookingErrValidation:
		return "validation"
	case BookingErrConflict:
		return "conflict"
	case BookingErrUnauthorized:
		return "unauthorized"
	case BookingErrTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// bookingFailedMessage is shown for every kind of booking failure
const bookingFailedMessage = "An error occurred while trying to book the appointment. Please try again."

// BookingError is the single failure outcome of a submission. Kind and the
// wrapped cause are kept for logging and callers that want to branch.
type BookingError struct {
	Kind BookingErrorKind
	Err  error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("booking failed (%s): %v", e.Kind, e.Err)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// UserMessage is the generic text shown to the user
func (e *BookingError) UserMessage() string {
	return bookingFailedMessage
}

func classifyBookingError(err error) *BookingError {
	kind := BookingErrUnknown
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		kind = BookingErrValidation
	case apperrors.Is(err, apperrors.ErrConflict):
		kind = BookingErrConflict
	case apperrors.Is(err, apperrors.ErrUnauthorized), apperrors.Is(err, apperrors.ErrAccessDenied):
		kind = BookingErrUnauthorized
	case apperrors.Is(err, apperrors.ErrTransport):
		kind = BookingErrTransport
	}
	return &BookingError{Kind: kind, Err: err}
}

// Confirmation is handed back for a committed booking
type Confirmation struct {
	AppointmentID string
	ProviderID    string
	Date          time.Time
}

// Message renders the confirmation screen text
func (c Confirmation) Message() string {
	return "Appointment booked for " + FormatConfirmation(c.Date)
}

// FormatConfirmation renders a booked time as "November, 26 at 17:00"
func FormatConfirmation(t time.Time) string {
	return t.Format("January, 2 at 15:04")
}

// BookingService turns a (provider, date, hour) choice into a committed appointment
type BookingService struct {
	gateway AppointmentGateway

	mu    sync.Mutex
	state BookingState
}

func NewBookingService(gateway AppointmentGateway) *BookingService {
	return &BookingService{gateway: gateway}
}

// Compose builds the booking for hour on date's calendar day, in date's
// location, with minutes and below zeroed.
func (s *BookingService) Compose(providerID string, date time.Time, hour int) (models.Booking, error) {
	if providerID == "" {
		return models.Booking{}, apperrors.InvalidInputError("provider_id", "is required")
	}
	if hour < 0 || hour > 23 {
		return models.Booking{}, apperrors.InvalidInputError("hour", "must be between 0 and 23")
	}
	if date.IsZero() {
		return models.Booking{}, apperrors.InvalidInputError("date", "is required")
	}

	y, m, d := date.Date()
	return models.Booking{
		ProviderID: providerID,
		Date:       time.Date(y, m, d, hour, 0, 0, 0, date.Location()),
	}, nil
}

// State returns the state of the current attempt
func (s *BookingService) State() BookingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit sends booking as one request. A call made while another is still
// submitting returns ErrSubmissionInProgress without reaching the network.
// Failures are returned as *BookingError; nothing is retried.
func (s *BookingService) Submit(ctx context.Context, booking models.Booking) (*Confirmation, error) {
	s.mu.Lock()
	if s.state == BookingSubmitting {
		s.mu.Unlock()
		metrics.BookingSubmissions.WithLabelValues("duplicate").Inc()
		return nil, ErrSubmissionInProgress
	}
	s.state = BookingSubmitting
	s.mu.Unlock()

	appt, err := s.gateway.CreateAppointment(ctx, models.CreateAppointmentRequest{
		ProviderID: booking.ProviderID,
		Date:       booking.Date,
	})
	if err != nil {
		bookingErr := classifyBookingError(err)
		s.finish(BookingFailed)
		metrics.BookingSubmissions.WithLabelValues("failed").Inc()
		logger.Warn("Booking failed",
			zap.String("provider_id", booking.ProviderID),
			zap.Time("date", booking.Date),
			zap.String("kind", bookingErr.Kind.String()),
			zap.Error(err))
		return nil, bookingErr
	}

	confirmation := &Confirmation{ProviderID: booking.ProviderID, Date: booking.Date}
	if appt != nil {
		confirmation.AppointmentID = appt.ID
		if !appt.Date.IsZero() {
			confirmation.Date = appt.Date.In(booking.Date.Location())
		}
	}

	s.finish(BookingConfirmed)
	metrics.BookingSubmissions.WithLabelValues("confirmed").Inc()
	logger.Info("Booking confirmed",
		zap.String("appointment_id", confirmation.AppointmentID),
		zap.String("provider_id", booking.ProviderID),
		zap.Time("date", confirmation.Date))

	return confirmation, nil
}

// Book composes and submits in one step
func (s *BookingService) Book(ctx context.Context, providerID string, date time.Time, hour int) (*Confirmation, error) {
	booking, err := s.Compose(providerID, date, hour)
	if err != nil {
		return nil, &BookingError{Kind: BookingErrValidation, Err: err}
	}
	return s.Submit(ctx, booking)
}

func (s *BookingService) finish(state BookingState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

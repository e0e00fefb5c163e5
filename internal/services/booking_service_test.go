package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/services"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBookingService_Compose(t *testing.T) {
	svc := services.NewBookingService(new(MockGateway))
	date := time.Date(2021, 11, 26, 9, 41, 0, 0, time.UTC)

	booking, err := svc.Compose("p-1", date, 17)
	require.NoError(t, err)

	assert.Equal(t, "p-1", booking.ProviderID)
	assert.Equal(t, time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC), booking.Date)
}

func TestBookingService_ComposeZeroesSecondsAndKeepsLocation(t *testing.T) {
	svc := services.NewBookingService(new(MockGateway))
	loc := time.FixedZone("BRT", -3*60*60)
	date := time.Date(2021, 11, 26, 23, 59, 59, 999, loc)

	booking, err := svc.Compose("p-1", date, 8)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2021, 11, 26, 8, 0, 0, 0, loc), booking.Date)
	assert.Equal(t, loc, booking.Date.Location())
}

func TestBookingService_ComposeRejectsInvalidInput(t *testing.T) {
	svc := services.NewBookingService(new(MockGateway))
	date := time.Date(2021, 11, 26, 9, 41, 0, 0, time.UTC)

	tests := []struct {
		name       string
		providerID string
		date       time.Time
		hour       int
	}{
		{name: "negative hour", providerID: "p-1", date: date, hour: -1},
		{name: "hour 24", providerID: "p-1", date: date, hour: 24},
		{name: "no provider", providerID: "", date: date, hour: 10},
		{name: "no date", providerID: "p-1", hour: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compose(tt.providerID, tt.date, tt.hour)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestBookingService_SubmitConfirmed(t *testing.T) {
	gw := new(MockGateway)
	svc := services.NewBookingService(gw)
	date := time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC)

	gw.On("CreateAppointment", mock.Anything, models.CreateAppointmentRequest{ProviderID: "p-1", Date: date}).
		Return(&models.Appointment{ID: "a-1", ProviderID: "p-1", Date: date}, nil).Once()

	confirmation, err := svc.Submit(context.Background(), models.Booking{ProviderID: "p-1", Date: date})
	require.NoError(t, err)

	assert.Equal(t, "a-1", confirmation.AppointmentID)
	assert.True(t, date.Equal(confirmation.Date))
	assert.Equal(t, services.BookingConfirmed, svc.State())
	assert.Equal(t, "Appointment booked for November, 26 at 17:00", confirmation.Message())
	gw.AssertExpectations(t)
}

func TestBookingService_SubmitFallsBackToSubmittedDate(t *testing.T) {
	gw := new(MockGateway)
	svc := services.NewBookingService(gw)
	date := time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC)

	gw.On("CreateAppointment", mock.Anything, mock.Anything).Return(&models.Appointment{ID: "a-1"}, nil).Once()

	confirmation, err := svc.Submit(context.Background(), models.Booking{ProviderID: "p-1", Date: date})
	require.NoError(t, err)
	assert.Equal(t, date, confirmation.Date)
}

func TestBookingService_DuplicateSubmitIsRejected(t *testing.T) {
	gw := new(MockGateway)
	svc := services.NewBookingService(gw)
	booking := models.Booking{ProviderID: "p-1", Date: time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC)}

	started := make(chan struct{})
	release := make(chan struct{})
	gw.On("CreateAppointment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.Appointment{ID: "a-1"}, nil).Once()

	type result struct {
		confirmation *services.Confirmation
		err          error
	}
	first := make(chan result, 1)
	go func() {
		c, err := svc.Submit(context.Background(), booking)
		first <- result{c, err}
	}()

	<-started
	assert.Equal(t, services.BookingSubmitting, svc.State())

	_, err := svc.Submit(context.Background(), booking)
	assert.ErrorIs(t, err, services.ErrSubmissionInProgress)

	close(release)
	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, "a-1", res.confirmation.AppointmentID)

	gw.AssertNumberOfCalls(t, "CreateAppointment", 1)
}

func TestBookingService_RejectedSubmissionFailsAndAllowsNewAttempt(t *testing.T) {
	gw := new(MockGateway)
	svc := services.NewBookingService(gw)
	booking := models.Booking{ProviderID: "p-1", Date: time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC)}

	gw.On("CreateAppointment", mock.Anything, mock.Anything).
		Return(nil, apperrors.ConflictError("slot already booked")).Once()
	gw.On("CreateAppointment", mock.Anything, mock.Anything).
		Return(&models.Appointment{ID: "a-2"}, nil).Once()

	_, err := svc.Submit(context.Background(), booking)
	require.Error(t, err)
	assert.Equal(t, services.BookingFailed, svc.State())

	var bookingErr *services.BookingError
	require.True(t, errors.As(err, &bookingErr))
	assert.Equal(t, services.BookingErrConflict, bookingErr.Kind)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	confirmation, err := svc.Submit(context.Background(), booking)
	require.NoError(t, err)
	assert.Equal(t, "a-2", confirmation.AppointmentID)
	assert.Equal(t, services.BookingConfirmed, svc.State())
}

func TestBookingService_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind services.BookingErrorKind
	}{
		{name: "validation", err: apperrors.InvalidInputError("date", "in the past"), kind: services.BookingErrValidation},
		{name: "conflict", err: apperrors.ConflictError("taken"), kind: services.BookingErrConflict},
		{name: "unauthorized", err: fmt.Errorf("token expired: %w", apperrors.ErrUnauthorized), kind: services.BookingErrUnauthorized},
		{name: "transport", err: apperrors.ErrTransport, kind: services.BookingErrTransport},
		{name: "server", err: apperrors.InternalError("boom"), kind: services.BookingErrUnknown},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			svc := services.NewBookingService(gw)
			gw.On("CreateAppointment", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			_, err := svc.Book(context.Background(), "p-1", time.Now(), 10)

			var bookingErr *services.BookingError
			require.ErrorAs(t, err, &bookingErr)
			assert.Equal(t, tt.kind, bookingErr.Kind)
			assert.ErrorIs(t, err, tt.err)
			messages = append(messages, bookingErr.UserMessage())
		})
	}

	// Every failure reads the same to the user
	for _, m := range messages {
		assert.Equal(t, messages[0], m)
	}
}

func TestBookingService_BookRejectsBadHourWithoutNetwork(t *testing.T) {
	gw := new(MockGateway)
	svc := services.NewBookingService(gw)

	_, err := svc.Book(context.Background(), "p-1", time.Now(), 25)

	var bookingErr *services.BookingError
	require.ErrorAs(t, err, &bookingErr)
	assert.Equal(t, services.BookingErrValidation, bookingErr.Kind)
	assert.Equal(t, services.BookingIdle, svc.State())
	gw.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
}

func TestFormatConfirmation(t *testing.T) {
	assert.Equal(t, "November, 26 at 17:00", services.FormatConfirmation(time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC)))
}

package stubapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/repository"
	"github.com/gobarber/gobarber-client/internal/stubapi"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/gobarber/gobarber-client/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fri 2021-11-26 09:41 UTC
var fixedNow = time.Date(2021, 11, 26, 9, 41, 0, 0, time.UTC)

func newSeededService(t *testing.T) (*stubapi.Service, map[string]string) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := stubapi.NewService(store, store, jwt.NewTokenManager("secret", "gobarber-test", 1),
		stubapi.Hours{Opening: 8, Closing: 17},
		stubapi.WithClock(func() time.Time { return fixedNow }),
		stubapi.WithLocation(time.UTC),
	)
	require.NoError(t, svc.Seed(context.Background(), stubapi.DefaultSeed))

	ids := map[string]string{}
	for _, seed := range stubapi.DefaultSeed {
		resp, err := svc.CreateSession(context.Background(), models.SignInRequest{Email: seed.Email, Password: seed.Password})
		require.NoError(t, err)
		ids[seed.Email] = resp.User.ID()
	}
	return svc, ids
}

func TestService_CreateSession(t *testing.T) {
	svc, ids := newSeededService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, models.SignInRequest{Email: "ana@gobarber.test", Password: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, ids["ana@gobarber.test"], resp.User.ID())
	assert.Equal(t, "Ana Barber", resp.User.Name())

	claims, err := svc.TokenManager().ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID(), claims.Subject)

	_, err = svc.CreateSession(ctx, models.SignInRequest{Email: "ana@gobarber.test", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.CreateSession(ctx, models.SignInRequest{Email: "nobody@gobarber.test", Password: "123456"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := newSeededService(t)

	_, err := svc.CreateUser(context.Background(), models.SignUpRequest{Name: "Other", Email: "ANA@gobarber.test", Password: "123456"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestService_UpdateProfile(t *testing.T) {
	svc, ids := newSeededService(t)
	ctx := context.Background()
	anaID := ids["ana@gobarber.test"]

	profile, err := svc.UpdateProfile(ctx, anaID, models.UpdateProfileRequest{Name: "Ana B.", Email: "ana@gobarber.test"})
	require.NoError(t, err)
	assert.Equal(t, "Ana B.", profile.Name())

	_, err = svc.UpdateProfile(ctx, anaID, models.UpdateProfileRequest{
		Name: "Ana B.", Email: "ana@gobarber.test",
		OldPassword: "wrong", Password: "abcdef", PasswordConfirmation: "abcdef",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.UpdateProfile(ctx, anaID, models.UpdateProfileRequest{
		Name: "Ana B.", Email: "ana@gobarber.test",
		OldPassword: "123456", Password: "abcdef", PasswordConfirmation: "abcdef",
	})
	require.NoError(t, err)

	_, err = svc.CreateSession(ctx, models.SignInRequest{Email: "ana@gobarber.test", Password: "abcdef"})
	assert.NoError(t, err)
}

func TestService_ListProviders_ExcludesCaller(t *testing.T) {
	svc, ids := newSeededService(t)

	providers, err := svc.ListProviders(context.Background(), ids["ana@gobarber.test"])
	require.NoError(t, err)
	require.Len(t, providers, 2)
	for _, p := range providers {
		assert.NotEqual(t, ids["ana@gobarber.test"], p.ID)
	}
}

func TestService_DayAvailability(t *testing.T) {
	svc, ids := newSeededService(t)
	ctx := context.Background()
	bruno := ids["bruno@gobarber.test"]

	_, err := svc.CreateAppointment(ctx, ids["ana@gobarber.test"], models.CreateAppointmentRequest{
		ProviderID: bruno,
		Date:       time.Date(2021, 11, 26, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	slots, err := svc.DayAvailability(ctx, bruno, 2021, 11, 26)
	require.NoError(t, err)
	require.Len(t, slots, 10)

	available := map[int]bool{}
	for _, s := range slots {
		available[s.Hour] = s.Available
	}
	assert.False(t, available[8], "past hour")
	assert.False(t, available[9], "current hour already started")
	assert.True(t, available[10])
	assert.False(t, available[14], "booked")
	assert.True(t, available[17])

	_, err = svc.DayAvailability(ctx, bruno, 2021, 2, 30)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.DayAvailability(ctx, "missing", 2021, 11, 26)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_CreateAppointment(t *testing.T) {
	svc, ids := newSeededService(t)
	ctx := context.Background()
	ana, bruno := ids["ana@gobarber.test"], ids["bruno@gobarber.test"]

	appt, err := svc.CreateAppointment(ctx, ana, models.CreateAppointmentRequest{
		ProviderID: bruno,
		Date:       time.Date(2021, 11, 26, 17, 25, 10, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.True(t, appt.Date.Equal(time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC)))

	tests := []struct {
		name     string
		userID   string
		req      models.CreateAppointmentRequest
		expected error
	}{
		{
			name:     "slot taken",
			userID:   ids["carla@gobarber.test"],
			req:      models.CreateAppointmentRequest{ProviderID: bruno, Date: time.Date(2021, 11, 26, 17, 0, 0, 0, time.UTC)},
			expected: apperrors.ErrConflict,
		},
		{
			name:     "with yourself",
			userID:   bruno,
			req:      models.CreateAppointmentRequest{ProviderID: bruno, Date: time.Date(2021, 11, 27, 10, 0, 0, 0, time.UTC)},
			expected: apperrors.ErrInvalidInput,
		},
		{
			name:     "past date",
			userID:   ana,
			req:      models.CreateAppointmentRequest{ProviderID: bruno, Date: time.Date(2021, 11, 26, 8, 0, 0, 0, time.UTC)},
			expected: apperrors.ErrInvalidInput,
		},
		{
			name:     "outside opening hours",
			userID:   ana,
			req:      models.CreateAppointmentRequest{ProviderID: bruno, Date: time.Date(2021, 11, 27, 20, 0, 0, 0, time.UTC)},
			expected: apperrors.ErrInvalidInput,
		},
		{
			name:     "unknown provider",
			userID:   ana,
			req:      models.CreateAppointmentRequest{ProviderID: "missing", Date: time.Date(2021, 11, 27, 10, 0, 0, 0, time.UTC)},
			expected: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAppointment(ctx, tt.userID, tt.req)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

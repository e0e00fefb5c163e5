package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gobarber/gobarber-client/internal/models"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/gobarber/gobarber-client/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T, router http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", httpclient.NewFromHTTPClient(srv.Client()), nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost:3333", nil, nil)
	assert.Error(t, err)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 10))
	l := NewLimiter(5, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

func TestClient_CreateSession(t *testing.T) {
	router := gin.New()
	router.POST("/sessions", func(c *gin.Context) {
		var req models.SignInRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		assert.Equal(t, "jane@example.com", req.Email)
		assert.NotEmpty(t, c.GetHeader(RequestIDHeader))
		assert.Empty(t, c.GetHeader("Authorization"))

		c.JSON(http.StatusOK, gin.H{
			"token": "tok-1",
			"user":  gin.H{"id": "u-1", "name": "Jane", "extra": 42},
		})
	})
	client := newTestClient(t, router)

	resp, err := client.CreateSession(context.Background(), models.SignInRequest{Email: "jane@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)
	assert.Equal(t, "u-1", resp.User.ID())
	assert.EqualValues(t, 42, resp.User["extra"])
}

func TestClient_AttachesBearerToken(t *testing.T) {
	router := gin.New()
	router.GET("/providers", func(c *gin.Context) {
		assert.Equal(t, "Bearer tok-1", c.GetHeader("Authorization"))
		c.JSON(http.StatusOK, []models.Provider{{ID: "p-1", Name: "Bob", AvatarURL: "http://img/bob.png"}})
	})
	client := newTestClient(t, router)
	client.SetTokenSource(TokenSourceFunc(func() string { return "tok-1" }))

	providers, err := client.ListProviders(context.Background())
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "http://img/bob.png", providers[0].AvatarURL)
}

func TestClient_DayAvailability(t *testing.T) {
	router := gin.New()
	router.GET("/providers/:id/day-availability", func(c *gin.Context) {
		assert.Equal(t, "p-1", c.Param("id"))
		assert.Equal(t, "2024", c.Query("year"))
		assert.Equal(t, "3", c.Query("month"))
		assert.Equal(t, "9", c.Query("day"))
		c.JSON(http.StatusOK, []models.AvailabilitySlot{{Hour: 8, Available: true}, {Hour: 13, Available: false}})
	})
	client := newTestClient(t, router)

	slots, err := client.DayAvailability(context.Background(), "p-1", 2024, 3, 9)
	require.NoError(t, err)
	assert.Equal(t, []models.AvailabilitySlot{{Hour: 8, Available: true}, {Hour: 13, Available: false}}, slots)
}

func TestClient_CreateAppointment(t *testing.T) {
	date := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	router := gin.New()
	router.POST("/appointments", func(c *gin.Context) {
		var req models.CreateAppointmentRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		assert.Equal(t, "p-1", req.ProviderID)
		assert.True(t, date.Equal(req.Date))
		c.JSON(http.StatusOK, models.Appointment{ID: "a-1", ProviderID: req.ProviderID, UserID: "u-1", Date: req.Date})
	})
	client := newTestClient(t, router)

	appt, err := client.CreateAppointment(context.Background(), models.CreateAppointmentRequest{ProviderID: "p-1", Date: date})
	require.NoError(t, err)
	assert.Equal(t, "a-1", appt.ID)
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   error
	}{
		{name: "bad request", status: http.StatusBadRequest, kind: apperrors.ErrInvalidInput},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, kind: apperrors.ErrInvalidInput},
		{name: "unauthorized", status: http.StatusUnauthorized, kind: apperrors.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, kind: apperrors.ErrAccessDenied},
		{name: "not found", status: http.StatusNotFound, kind: apperrors.ErrNotFound},
		{name: "conflict", status: http.StatusConflict, kind: apperrors.ErrConflict},
		{name: "server error", status: http.StatusInternalServerError, kind: apperrors.ErrInternal},
		{name: "bad gateway", status: http.StatusBadGateway, kind: apperrors.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/sessions", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{"status": "error", "message": "nope"})
			})
			client := newTestClient(t, router)

			_, err := client.CreateSession(context.Background(), models.SignInRequest{Email: "a@b.c", Password: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Message)
			assert.Equal(t, "create_session", apiErr.Operation)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client, err := NewClient(baseURL, httpclient.NewStandardClient(time.Second), nil)
	require.NoError(t, err)

	_, err = client.ListProviders(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTransport)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
}

func TestClient_Timeout(t *testing.T) {
	router := gin.New()
	router.GET("/providers", func(c *gin.Context) {
		time.Sleep(200 * time.Millisecond)
		c.JSON(http.StatusOK, []models.Provider{})
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, httpclient.NewStandardClient(20*time.Millisecond), nil)
	require.NoError(t, err)

	_, err = client.ListProviders(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrTransport)
}

func TestClient_MalformedResponse(t *testing.T) {
	router := gin.New()
	router.GET("/providers", func(c *gin.Context) {
		c.String(http.StatusOK, "not json")
	})
	client := newTestClient(t, router)

	_, err := client.ListProviders(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestClient_CanceledContextWhileThrottled(t *testing.T) {
	router := gin.New()
	router.GET("/providers", func(c *gin.Context) {
		c.JSON(http.StatusOK, []models.Provider{})
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, httpclient.NewFromHTTPClient(srv.Client()), NewLimiter(0.001, 1))
	require.NoError(t, err)

	_, err = client.ListProviders(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.ListProviders(ctx)
	assert.ErrorIs(t, err, apperrors.ErrTransport)
}

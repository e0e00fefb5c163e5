package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/gobarber/gobarber-client/pkg/httpclient"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	"github.com/gobarber/gobarber-client/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	serviceName = "gobarber-api"

	// RequestIDHeader carries a per-call identifier for log correlation
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 1 << 20
)

// TokenSource yields the bearer token of the live session, or "" when there is none
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Client is the typed HTTP client of the remote scheduling API
type Client struct {
	baseURL    *url.URL
	httpClient httpclient.Client
	limiter    *rate.Limiter

	mu     sync.RWMutex
	tokens TokenSource
}

// NewClient creates a gateway rooted at baseURL. A nil limiter disables throttling.
func NewClient(baseURL string, httpClient httpclient.Client, limiter *rate.Limiter) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", baseURL)
	}
	if httpClient == nil {
		httpClient = httpclient.NewStandardClient(0)
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		limiter:    limiter,
	}, nil
}

// NewLimiter builds the outbound throttle; a non-positive rate disables it
func NewLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// SetTokenSource installs the provider of the Authorization header
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// CreateSession exchanges credentials for a token and a user profile
func (c *Client) CreateSession(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error) {
	var out models.SessionResponse
	if err := c.do(ctx, "create_session", http.MethodPost, "/sessions", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser registers a new account
func (c *Client) CreateUser(ctx context.Context, req models.SignUpRequest) (models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, "create_user", http.MethodPost, "/users", nil, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile updates the authenticated user's profile
func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, "update_profile", http.MethodPut, "/profile", nil, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProviders returns the bookable providers
func (c *Client) ListProviders(ctx context.Context) ([]models.Provider, error) {
	var out []models.Provider
	if err := c.do(ctx, "list_providers", http.MethodGet, "/providers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DayAvailability returns the hourly availability of a provider on one date
func (c *Client) DayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))
	query.Set("day", strconv.Itoa(day))

	path := "/providers/" + url.PathEscape(providerID) + "/day-availability"

	var out []models.AvailabilitySlot
	if err := c.do(ctx, "day_availability", http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAppointment books a provider at the given hour
func (c *Client) CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	var out models.Appointment
	if err := c.do(ctx, "create_appointment", http.MethodPost, "/appointments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, span := tracing.StartSpan(ctx, "gateway."+operation,
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
		attribute.String("request.id", requestID),
	)
	defer span.End()

	statusCode := 0
	defer func() {
		duration := metrics.MeasureDuration(start)
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.APIRequestDuration.WithLabelValues(operation, status).Observe(duration)
		metrics.APIRequestTotal.WithLabelValues(operation, status).Inc()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", statusCode),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.LogAPICall(serviceName, operation, status, duration, fields...)
	}()

	fail := func(status int, kind error, msg string, cause error) error {
		return &APIError{
			Operation:  operation,
			Method:     method,
			Path:       path,
			StatusCode: status,
			Message:    msg,
			kind:       kind,
			cause:      cause,
		}
	}

	if c.limiter != nil {
		if waitErr := c.limiter.Wait(ctx); waitErr != nil {
			return fail(0, apperrors.ErrTransport, "rate limiter", waitErr)
		}
	}

	var reader io.Reader
	if body != nil {
		b, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fail(0, apperrors.ErrInvalidInput, "encode request body", marshalErr)
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if reqErr != nil {
		return fail(0, apperrors.ErrTransport, "build request", reqErr)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	tracing.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return fail(0, apperrors.ErrTransport, "", doErr)
	}
	defer resp.Body.Close()

	statusCode = resp.StatusCode
	span.SetAttributes(attribute.Int("http.response.status_code", statusCode))

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if readErr != nil {
		return fail(statusCode, apperrors.ErrTransport, "read response body", readErr)
	}

	if statusCode >= http.StatusBadRequest {
		var eb errorBody
		_ = json.Unmarshal(payload, &eb) //nolint:errcheck // error bodies are best effort
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return fail(statusCode, classifyStatus(statusCode), msg, nil)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if decodeErr := json.Unmarshal(payload, out); decodeErr != nil {
		return fail(statusCode, apperrors.ErrInternal, "decode response body", decodeErr)
	}
	return nil
}

package app

import (
	"fmt"
	"time"

	"github.com/gobarber/gobarber-client/config"
	"github.com/gobarber/gobarber-client/internal/cache"
	"github.com/gobarber/gobarber-client/internal/gateway"
	"github.com/gobarber/gobarber-client/internal/services"
	"github.com/gobarber/gobarber-client/internal/session"
	"github.com/gobarber/gobarber-client/internal/storage"
	"github.com/gobarber/gobarber-client/pkg/httpclient"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"go.uber.org/zap"
)

// App wires the client core together
type App struct {
	Config       *config.Config
	Gateway      *gateway.Client
	Storage      storage.Storage
	Sessions     *session.Manager
	Availability *services.AvailabilityService
	Booking      *services.BookingService
	Providers    *services.ProviderService
	Registration *services.RegistrationService
	Profile      *services.ProfileService
}

// Option overrides a dependency App would otherwise build from config
type Option func(*options)

type options struct {
	storage    storage.Storage
	httpClient httpclient.Client
}

// WithStorage replaces the file-backed session storage
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithHTTPClient replaces the HTTP client used by the gateway
func WithHTTPClient(c httpclient.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New builds an App from cfg. The session is not restored yet; callers run
// Sessions.Restore before reading the session state.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.storage == nil {
		fileStorage, err := storage.NewFileStorage(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open session storage: %w", err)
		}
		o.storage = fileStorage
	}
	if o.httpClient == nil {
		o.httpClient = httpclient.NewStandardClient(time.Duration(cfg.Client.RequestTimeoutSeconds) * time.Second)
	}

	gw, err := gateway.NewClient(cfg.Client.APIBaseURL, o.httpClient,
		gateway.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(gw, o.storage, session.Keys{
		Token: cfg.Storage.TokenKey,
		User:  cfg.Storage.UserKey,
	})
	gw.SetTokenSource(gateway.TokenSourceFunc(sessions.Token))

	providerCache := cache.NewProviderCache(gw, time.Duration(cfg.Cache.ProviderTTLSeconds)*time.Second)

	logger.Debug("Client initialized",
		zap.String("api_base_url", cfg.Client.APIBaseURL),
		zap.String("storage", fmt.Sprintf("%T", o.storage)))

	return &App{
		Config:       cfg,
		Gateway:      gw,
		Storage:      o.storage,
		Sessions:     sessions,
		Availability: services.NewAvailabilityService(gw),
		Booking:      services.NewBookingService(gw),
		Providers:    services.NewProviderService(providerCache),
		Registration: services.NewRegistrationService(gw),
		Profile:      services.NewProfileService(gw, sessions),
	}, nil
}

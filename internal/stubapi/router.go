package stubapi

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/gobarber/gobarber-client/config"
	"github.com/gobarber/gobarber-client/internal/handlers"
	"github.com/gobarber/gobarber-client/internal/middleware"
	"github.com/gobarber/gobarber-client/pkg/metrics"
)

var _ handlers.SchedulingService = (*Service)(nil)

// NewRouter builds the development API. Background work started for the
// router (rate limiter sweeps) stops when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, svc *Service) *gin.Engine {
	handlers.ConfigureBinding()

	sessionHandler := handlers.NewSessionHandler(svc)
	registrationHandler := handlers.NewRegistrationHandler(svc)
	profileHandler := handlers.NewProfileHandler(svc)
	providerHandler := handlers.NewProviderHandler(svc)
	appointmentHandler := handlers.NewAppointmentHandler(svc)
	healthHandler := handlers.NewHealthHandler()

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.StubAPI.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:19006", "http://127.0.0.1:19006")
	}
	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  allowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader, "traceparent", "tracestate"},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	generalRateLimiter := middleware.NewRateLimiter(ctx, 100, 200)
	authRateLimiter := middleware.NewRateLimiter(ctx, 5, 10)
	bookingRateLimiter := middleware.NewRateLimiter(ctx, 10, 20)

	router.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	router.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	router.POST("/sessions", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(16*1024), sessionHandler.CreateSession)
	router.POST("/users", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(16*1024), registrationHandler.CreateUser)

	authed := router.Group("/")
	authed.Use(middleware.BearerAuthMiddleware(svc.TokenManager()))
	authed.PUT("/profile", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(16*1024), profileHandler.UpdateProfile)
	authed.GET("/providers", generalRateLimiter.Middleware(), providerHandler.ListProviders)
	authed.GET("/providers/:id/day-availability", generalRateLimiter.Middleware(), providerHandler.DayAvailability)
	authed.POST("/appointments", bookingRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(16*1024), appointmentHandler.CreateAppointment)

	return router
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gobarber/gobarber-client/config"
	"github.com/gobarber/gobarber-client/internal/repository"
	"github.com/gobarber/gobarber-client/internal/stubapi"
	"github.com/gobarber/gobarber-client/pkg/jwt"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/profiling"
	"github.com/gobarber/gobarber-client/pkg/tracing"
)

func main() {
	fs := pflag.NewFlagSet("stubapi", pflag.ExitOnError)
	config.RegisterFlags(fs)
	noSeed := fs.Bool("no-seed", false, "start without the default provider accounts")
	_ = fs.Parse(os.Args[1:]) //nolint:errcheck // ExitOnError

	// Load configuration
	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateStub(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Client.AppEnv,
		ServiceName: cfg.Observability.ServiceName + "-stub",
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting GoBarber development API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Client.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName+"-stub",
		cfg.Observability.ServiceVersion,
		cfg.Client.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling,
		cfg.Observability.ServiceName+"-stub",
		cfg.Observability.ServiceVersion,
		cfg.Client.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := repository.NewMemoryStore()
	tokens := jwt.NewTokenManager(cfg.StubAPI.JWTSecret, cfg.StubAPI.JWTIssuer, cfg.StubAPI.SessionTTLHours)
	svc := stubapi.NewService(store, store, tokens, stubapi.Hours{
		Opening: cfg.StubAPI.OpeningHour,
		Closing: cfg.StubAPI.ClosingHour,
	})

	if !*noSeed {
		if err := svc.Seed(ctx, stubapi.DefaultSeed); err != nil {
			logger.Fatal("Failed to seed accounts", zap.Error(err))
		}
		logger.Info("Seeded provider accounts", zap.Int("count", len(stubapi.DefaultSeed)))
	}

	gin.SetMode(cfg.StubAPI.GinMode)
	router := stubapi.NewRouter(ctx, cfg, svc)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.StubAPI.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.StubAPI.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

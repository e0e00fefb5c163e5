package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Client        ClientConfig
	Storage       StorageConfig
	RateLimit     RateLimitConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Cache         CacheConfig
	StubAPI       StubAPIConfig
	Profiling     ProfilingConfig
}

type ClientConfig struct {
	AppEnv                string
	APIBaseURL            string
	RequestTimeoutSeconds int
}

type StorageConfig struct {
	Path     string
	TokenKey string
	UserKey  string
}

type RateLimitConfig struct {
	RequestsPerSecond float64 // 0 disables the outbound throttle
	Burst             int
}

type LoggingConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
}

type ObservabilityConfig struct {
	ExporterEndpoint string
	ServiceName      string
	ServiceVersion   string
}

type CacheConfig struct {
	ProviderTTLSeconds int // Provider directory TTL in seconds
}

type StubAPIConfig struct {
	Port            string
	GinMode         string
	JWTSecret       string
	JWTIssuer       string
	SessionTTLHours int
	AllowedOrigins  []string
	OpeningHour     int
	ClosingHour     int
}

// ProfilingConfig controls continuous profiling of the stub API
type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// flagKeys maps command-line flags onto configuration keys
var flagKeys = map[string]string{
	"api-url":      "API_BASE_URL",
	"storage-path": "STORAGE_PATH",
	"log-level":    "LOG_LEVEL",
	"env":          "APP_ENV",
	"port":         "STUB_PORT",
}

// RegisterFlags declares the flags understood by Load on fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("api-url", "", "base URL of the remote API (API_BASE_URL)")
	fs.String("storage-path", "", "file holding the persisted session (STORAGE_PATH)")
	fs.String("log-level", "", "log level: debug, info, warn, error (LOG_LEVEL)")
	fs.String("env", "", "application environment (APP_ENV)")
	fs.String("port", "", "stub API listen port (STUB_PORT)")
}

// Load reads configuration from environment variables, an optional .env file
// and, when fs is not nil, the flags declared by RegisterFlags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("API_BASE_URL", "http://localhost:3333")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 15)
	v.SetDefault("STORAGE_PATH", defaultStoragePath())
	v.SetDefault("STORAGE_TOKEN_KEY", "@GoBarber:token")
	v.SetDefault("STORAGE_USER_KEY", "@GoBarber:user")
	v.SetDefault("API_RATE_LIMIT", 10)
	v.SetDefault("API_RATE_BURST", 20)
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 10)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "gobarber-client")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("PROVIDER_CACHE_TTL", 60)

	// Stub API defaults
	v.SetDefault("STUB_PORT", "3333")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "gobarber-stub")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:19006")
	v.SetDefault("STUB_OPENING_HOUR", 8)
	v.SetDefault("STUB_CLOSING_HOUR", 17)

	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "gobarber-stub")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	if fs != nil {
		for name, key := range flagKeys {
			if flag := fs.Lookup(name); flag != nil && flag.Changed {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Client: ClientConfig{
			AppEnv:                v.GetString("APP_ENV"),
			APIBaseURL:            strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			RequestTimeoutSeconds: v.GetInt("HTTP_TIMEOUT_SECONDS"),
		},
		Storage: StorageConfig{
			Path:     v.GetString("STORAGE_PATH"),
			TokenKey: v.GetString("STORAGE_TOKEN_KEY"),
			UserKey:  v.GetString("STORAGE_USER_KEY"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("API_RATE_LIMIT"),
			Burst:             v.GetInt("API_RATE_BURST"),
		},
		Logging: LoggingConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Dir:        v.GetString("LOG_DIR"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:      v.GetString("O11Y_SERVICE_NAME"),
			ServiceVersion:   v.GetString("O11Y_SERVICE_VERSION"),
		},
		Cache: CacheConfig{
			ProviderTTLSeconds: v.GetInt("PROVIDER_CACHE_TTL"),
		},
		StubAPI: StubAPIConfig{
			Port:            v.GetString("STUB_PORT"),
			GinMode:         v.GetString("GIN_MODE"),
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			AllowedOrigins:  splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
			OpeningHour:     v.GetInt("STUB_OPENING_HOUR"),
			ClosingHour:     v.GetInt("STUB_CLOSING_HOUR"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	return cfg, nil
}

// Validate checks the settings the client needs
func (c *Config) Validate() error {
	if c.Client.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.Client.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.Client.APIBaseURL)
	}

	if c.Client.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("STORAGE_PATH is required")
	}
	if c.Storage.TokenKey == "" || c.Storage.UserKey == "" {
		return fmt.Errorf("STORAGE_TOKEN_KEY and STORAGE_USER_KEY are required")
	}
	if c.Storage.TokenKey == c.Storage.UserKey {
		return fmt.Errorf("STORAGE_TOKEN_KEY and STORAGE_USER_KEY must differ")
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("API_RATE_BURST must be positive when API_RATE_LIMIT is set")
	}

	return nil
}

// ValidateStub checks the settings the stub API needs
func (c *Config) ValidateStub() error {
	if c.StubAPI.Port == "" {
		return fmt.Errorf("STUB_PORT is required")
	}
	if c.StubAPI.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.StubAPI.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.StubAPI.OpeningHour < 0 || c.StubAPI.ClosingHour > 23 || c.StubAPI.OpeningHour > c.StubAPI.ClosingHour {
		return fmt.Errorf("STUB_OPENING_HOUR and STUB_CLOSING_HOUR must form a range within 0-23")
	}
	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Client.AppEnv == "development" || c.StubAPI.GinMode == "debug"
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".gobarber", "storage.json")
	}
	return filepath.Join(dir, "gobarber", "storage.json")
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	providersCacheKey  = "providers"
	providersCacheName = "providers"
	defaultProviderTTL = time.Minute
)

// ProviderSource fetches the provider directory from the remote API
type ProviderSource interface {
	ListProviders(ctx context.Context) ([]models.Provider, error)
}

// ProviderCache holds the provider directory for the lifetime of a screen.
// Callers invalidate it when the screen goes away.
type ProviderCache struct {
	cache  *gocache.Cache
	source ProviderSource
	ttl    time.Duration
}

// NewProviderCache creates a provider cache; a non-positive ttl falls back to one minute
func NewProviderCache(source ProviderSource, ttl time.Duration) *ProviderCache {
	if ttl <= 0 {
		ttl = defaultProviderTTL
	}

	return &ProviderCache{
		cache:  gocache.New(ttl, 2*ttl),
		source: source,
		ttl:    ttl,
	}
}

// Get returns the cached providers or fetches them on a miss
func (pc *ProviderCache) Get(ctx context.Context) ([]models.Provider, error) {
	if data, found := pc.cache.Get(providersCacheKey); found {
		providers, ok := data.([]models.Provider)
		if !ok {
			logger.Error("Invalid providers cache data type")
			pc.cache.Delete(providersCacheKey)
			return nil, fmt.Errorf("invalid cache data type")
		}
		metrics.CacheHits.WithLabelValues(providersCacheName).Inc()
		logger.Debug("Providers cache hit")
		return providers, nil
	}

	metrics.CacheMisses.WithLabelValues(providersCacheName).Inc()
	logger.Debug("Providers cache miss, fetching from API")

	return pc.refresh(ctx)
}

// Invalidate drops the cached directory
func (pc *ProviderCache) Invalidate() {
	pc.cache.Delete(providersCacheKey)
}

func (pc *ProviderCache) refresh(ctx context.Context) ([]models.Provider, error) {
	providers, err := pc.source.ListProviders(ctx)
	if err != nil {
		logger.Warn("Failed to refresh providers cache", zap.Error(err))
		return nil, err
	}

	pc.cache.Set(providersCacheKey, providers, pc.ttl)
	logger.Debug("Providers cache refreshed", zap.Int("count", len(providers)))

	return providers, nil
}

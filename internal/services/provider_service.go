package services

import (
	"context"

	"github.com/gobarber/gobarber-client/internal/cache"
	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"go.uber.org/zap"
)

// ProviderService serves the provider directory to the dashboard and the
// booking screen
type ProviderService struct {
	cache *cache.ProviderCache
}

func NewProviderService(providerCache *cache.ProviderCache) *ProviderService {
	return &ProviderService{cache: providerCache}
}

// ListProviders returns the providers, or an empty list when they cannot be fetched
func (s *ProviderService) ListProviders(ctx context.Context) []models.Provider {
	providers, err := s.cache.Get(ctx)
	if err != nil {
		logger.Warn("Failed to list providers", zap.Error(err))
		return []models.Provider{}
	}
	if providers == nil {
		return []models.Provider{}
	}
	return providers
}

// Leave drops the directory held for the current screen
func (s *ProviderService) Leave() {
	s.cache.Invalidate()
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls     int
	providers []models.Provider
	err       error
}

func (s *countingSource) ListProviders(ctx context.Context) ([]models.Provider, error) {
	s.calls++
	return s.providers, s.err
}

func TestProviderCache_HitAfterMiss(t *testing.T) {
	src := &countingSource{providers: []models.Provider{{ID: "p-1", Name: "Bob"}}}
	pc := NewProviderCache(src, time.Minute)
	hits := testutil.ToFloat64(metrics.CacheHits.WithLabelValues(providersCacheName))
	misses := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(providersCacheName))

	first, err := pc.Get(context.Background())
	require.NoError(t, err)
	second, err := pc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.CacheHits.WithLabelValues(providersCacheName)))
	assert.Equal(t, misses+1, testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(providersCacheName)))
}

func TestProviderCache_Invalidate(t *testing.T) {
	src := &countingSource{providers: []models.Provider{{ID: "p-1"}}}
	pc := NewProviderCache(src, time.Minute)

	_, err := pc.Get(context.Background())
	require.NoError(t, err)
	pc.Invalidate()
	_, err = pc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
}

func TestProviderCache_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("offline")}
	pc := NewProviderCache(src, 0)

	_, err := pc.Get(context.Background())
	assert.Error(t, err)

	src.err = nil
	src.providers = []models.Provider{{ID: "p-1"}}
	providers, err := pc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, providers, 1)
	assert.Equal(t, 2, src.calls)
}

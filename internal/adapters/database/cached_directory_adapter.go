package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
)

// CachedDirectoryAdapter wraps a DirectoryRepository with caching
type CachedDirectoryAdapter struct {
	adapter repositories.DirectoryRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
	logger  zerolog.Logger
	async   bool
}

// NewCachedDirectoryAdapter creates a new cached directory adapter
func NewCachedDirectoryAdapter(adapter repositories.DirectoryRepository, cache providers.CacheProvider, metrics *observability.Metrics) *CachedDirectoryAdapter {
	return &CachedDirectoryAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
		logger:  observability.Component("cached_directory_adapter"),
		async:   true,
	}
}

// Cache TTLs (in seconds)
const (
	regionsTTL      = 3600 // the directory changes only on import
	subregionsTTL   = 3600
	searchResultTTL = 120
	rowsTTL         = 300
)

func regionsCacheKey() string {
	return "directory:regions"
}

func subregionsCacheKey(region string) string {
	return fmt.Sprintf("directory:subregions:%s", region)
}

func servicePointRowsCacheKey(id string) string {
	return fmt.Sprintf("directory:rows:%s", id)
}

func searchCacheKey(q entities.ServicePointQuery) string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return "directory:search:" + hex.EncodeToString(sum[:16])
}

// cached runs load on a miss and stores its result.
func cached[T any](ctx context.Context, a *CachedDirectoryAdapter, keyspace, key string, ttl int, load func() (T, error)) (T, error) {
	if data, err := a.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, keyspace)
			return v, nil
		}
		a.logger.Warn().Err(err).Str("key", key).Msg("failed to decode cached value")
	}
	observability.RecordCacheMiss(ctx, a.metrics, keyspace)

	v, err := load()
	if err != nil {
		return v, err
	}

	store := func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		if err := a.cache.Set(bgCtx, key, data, ttl); err != nil {
			a.logger.Warn().Err(err).Str("key", key).Msg("failed to cache value")
		}
	}
	if a.async {
		go store()
	} else {
		store()
	}
	return v, nil
}

// SearchServicePoints caches identical gateway queries for a short time
func (a *CachedDirectoryAdapter) SearchServicePoints(ctx context.Context, q entities.ServicePointQuery) ([]entities.ServicePoint, error) {
	return cached(ctx, a, "search", searchCacheKey(q), searchResultTTL, func() ([]entities.ServicePoint, error) {
		return a.adapter.SearchServicePoints(ctx, q)
	})
}

// ListRegions caches the province list
func (a *CachedDirectoryAdapter) ListRegions(ctx context.Context) ([]string, error) {
	return cached(ctx, a, "regions", regionsCacheKey(), regionsTTL, func() ([]string, error) {
		return a.adapter.ListRegions(ctx)
	})
}

// ListSubregions caches the town list of each province
func (a *CachedDirectoryAdapter) ListSubregions(ctx context.Context, region string) ([]string, error) {
	return cached(ctx, a, "subregions", subregionsCacheKey(region), subregionsTTL, func() ([]string, error) {
		return a.adapter.ListSubregions(ctx, region)
	})
}

// ListRowsByServicePoint caches the raw rows behind a detail view
func (a *CachedDirectoryAdapter) ListRowsByServicePoint(ctx context.Context, servicePointID string) ([]entities.DirectoryRow, error) {
	return cached(ctx, a, "rows", servicePointRowsCacheKey(servicePointID), rowsTTL, func() ([]entities.DirectoryRow, error) {
		return a.adapter.ListRowsByServicePoint(ctx, servicePointID)
	})
}

// Invalidate drops the region lists, typically after an import.
// Search and detail entries simply age out.
func (a *CachedDirectoryAdapter) Invalidate(ctx context.Context, regions []string) error {
	if err := a.cache.Delete(ctx, regionsCacheKey()); err != nil {
		return err
	}
	for _, r := range regions {
		if err := a.cache.Delete(ctx, subregionsCacheKey(r)); err != nil {
			return err
		}
	}
	return nil
}

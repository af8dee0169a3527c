package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
)

// CacheWarmingService keeps the region cascade hot. It reads through the
// caching directory decorator, so every lookup repopulates its entry.
type CacheWarmingService struct {
	directory repositories.DirectoryRepository
	logger    zerolog.Logger
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(directory repositories.DirectoryRepository) *CacheWarmingService {
	return &CacheWarmingService{
		directory: directory,
		logger:    observability.Component("cache_warming"),
	}
}

// WarmCache loads every region and its subregions. A failing region is
// logged and skipped.
func (s *CacheWarmingService) WarmCache(ctx context.Context) (int, error) {
	regions, err := s.directory.ListRegions(ctx)
	if err != nil {
		return 0, err
	}

	warmed := 0
	for _, region := range regions {
		if ctx.Err() != nil {
			return warmed, ctx.Err()
		}
		if _, err := s.directory.ListSubregions(ctx, region); err != nil {
			s.logger.Warn().Err(err).Str("region", region).Msg("failed to warm subregions")
			continue
		}
		warmed++
	}

	s.logger.Debug().Int("regions", len(regions)).Int("warmed", warmed).Msg("cache warming completed")
	return warmed, nil
}

// StartPeriodicWarming warms once and then every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if _, err := s.WarmCache(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("stopping cache warming service")
				return
			case <-ticker.C:
				if _, err := s.WarmCache(ctx); err != nil {
					s.logger.Warn().Err(err).Msg("periodic cache warming failed")
				}
			}
		}
	}()
	s.logger.Info().Dur("interval", interval).Msg("started periodic cache warming")
}

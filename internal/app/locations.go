package app

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/config"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/repository/decorators"
	redisrepo "github.com/Nazarious-ucu/vibe-trading-launch/internal/repository/redis"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/repository/sqlite"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/store"
)

const redisLocationName = "redis"

// BuildLocations returns the ordered candidate locations: sqlite files from
// DB_PATH and its fallbacks, then redis when REDIS_ADDR is set. Each one is
// wrapped with metrics and a circuit breaker.
func BuildLocations(cfg config.Config, fsys afero.Fs, logger zerolog.Logger, m *metrics.Metrics) []store.Location {
	paths := sqlite.CandidatePaths(sqlite.PathOptions{
		Primary:          cfg.DB.Path,
		Fallbacks:        cfg.DB.FallbackPaths,
		DisableFallbacks: cfg.DB.DisableFallbacks,
	})

	var locs []store.Location
	for _, repo := range sqlite.NewLocations(paths, fsys, cfg.DB.ConnTimeout, logger) {
		locs = append(locs, wrap(repo, logger, m))
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		repo := redisrepo.NewSubscriberRepository(redisLocationName, client, cfg.Redis.KeyPrefix, logger)
		locs = append(locs, wrap(repo, logger, m))
	}

	names := make([]string, 0, len(locs))
	for _, l := range locs {
		names = append(names, l.Name())
	}
	logger.Info().Strs("locations", names).Msg("storage candidates resolved")
	return locs
}

func wrap(loc store.Location, logger zerolog.Logger, m *metrics.Metrics) store.Location {
	return decorators.NewBreakerLocation(decorators.NewMetricsDecorator(loc, m), m, logger)
}

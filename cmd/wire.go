package main

import (
	"context"
	"fmt"
	"log"

	"consultabot/config"
	"consultabot/internal/cache"
	"consultabot/internal/health"
	"consultabot/internal/lookup"
)

func buildRegistry(cfg *config.Config) (*lookup.Registry, error) {
	sources := lookup.DefaultSources(
		cfg.Upstreams.ApisBrasilBase,
		cfg.Upstreams.FetchBrasilBase,
		cfg.Upstreams.FetchBrasilToken,
	)
	return lookup.NewRegistry(sources)
}

func buildCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedis(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
	case "memory":
		return cache.NewMemory(cfg.Cache.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func buildService(ctx context.Context, cfg *config.Config) (*lookup.Service, error) {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	c, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fetcher := lookup.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.Retries, cfg.Fetch.Backoff)
	return lookup.NewService(registry, fetcher, c, cfg.Cache.TTL, nil), nil
}

// buildProber wires a retry-free fetcher so a probe measures exactly
// one round trip.
func buildProber(cfg *config.Config, registry *lookup.Registry, logger *log.Logger) *health.Prober {
	probeFetcher := lookup.NewFetcher(cfg.Health.ProbeTimeout, 0, nil)
	thresholds := health.Thresholds{FastUnder: cfg.Health.FastUnder, DownOver: cfg.Health.DownOver}
	return health.NewProber(registry, probeFetcher, cfg.Health.Interval, cfg.Health.ProbeTimeout, thresholds, logger)
}

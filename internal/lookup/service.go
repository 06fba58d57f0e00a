package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"consultabot/internal/cache"
	"consultabot/internal/metrics"
)

// Service glues the fetcher, the response cache and the cleaner into
// the lookup pipeline used by the bot and the HTTP API: cache → fetch
// → cache fill → clean, and for consolidated queries a concurrent
// fan-out over every source of a kind followed by a merge.
type Service struct {
	Registry *Registry
	Fetcher  *Fetcher
	Cache    cache.Cache
	TTL      time.Duration
	Logger   *log.Logger
}

func NewService(registry *Registry, fetcher *Fetcher, c cache.Cache, ttl time.Duration, logger *log.Logger) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[LOOKUP] ", log.LstdFlags)
	}
	return &Service{Registry: registry, Fetcher: fetcher, Cache: c, TTL: ttl, Logger: logger}
}

// Lookup runs the pipeline for one source. It returns the cleaned
// tree, which is nil when the upstream answered but nothing relevant
// survived cleaning.
func (s *Service) Lookup(ctx context.Context, sourceKey, rawQuery string) (any, error) {
	src, ok := s.Registry.Get(sourceKey)
	if !ok {
		return nil, fmt.Errorf("unknown source %q", sourceKey)
	}
	query := Normalize(src.Kind, rawQuery)
	if query == "" {
		return nil, fmt.Errorf("source %s: empty query after normalization", sourceKey)
	}

	raw, err := s.fetchCached(ctx, src, query)
	if err != nil {
		metrics.Lookups.WithLabelValues(src.Key, metrics.OutcomeError).Inc()
		return nil, err
	}
	cleaned := Clean(raw)
	if cleaned == nil {
		metrics.Lookups.WithLabelValues(src.Key, metrics.OutcomeEmpty).Inc()
	} else {
		metrics.Lookups.WithLabelValues(src.Key, metrics.OutcomeOK).Inc()
	}
	return cleaned, nil
}

func (s *Service) fetchCached(ctx context.Context, src Source, query string) (any, error) {
	key := cache.Key(src.Key, query)
	if s.Cache != nil {
		if encoded, ok := s.Cache.Get(ctx, key); ok {
			if tree, err := DecodeJSON(encoded); err == nil {
				metrics.CacheHits.Inc()
				return tree, nil
			}
			// undecodable entry: fall through and refetch
		}
		metrics.CacheMisses.Inc()
	}

	start := time.Now()
	raw, err := s.Fetcher.Fetch(ctx, src, query)
	metrics.UpstreamLatency.WithLabelValues(src.Key).Observe(time.Since(start).Seconds())
	if err != nil {
		s.Logger.Printf("fetch %s failed: %v", src.Key, err)
		return nil, err
	}
	if s.Cache != nil {
		if encoded, merr := json.Marshal(raw); merr == nil {
			if cerr := s.Cache.Set(ctx, key, encoded, s.TTL); cerr != nil {
				s.Logger.Printf("cache set %s: %v", key, cerr)
			}
		}
	}
	return raw, nil
}

// LookupAll fans out one query to every source registered for kind,
// waits for all of them, and merges the cleaned survivors. A failed
// source is simply left out; the call only fails when every source
// failed.
func (s *Service) LookupAll(ctx context.Context, kind Kind, rawQuery string) (any, error) {
	sources := s.Registry.ByKind(kind)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources registered for kind %s", kind)
	}

	cleaned := make([]any, len(sources))
	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			cleaned[i], errs[i] = s.Lookup(ctx, src.Key, rawQuery)
		}(i, src)
	}
	wg.Wait()

	var inputs []any
	var lastErr error
	failed := 0
	for i := range sources {
		if errs[i] != nil {
			failed++
			lastErr = errs[i]
			continue
		}
		if cleaned[i] != nil {
			inputs = append(inputs, cleaned[i])
		}
	}
	if failed == len(sources) {
		return nil, fmt.Errorf("all %d sources failed for %s: %w", len(sources), kind, lastErr)
	}
	return Merge(inputs), nil
}

// Package metrics exposes the bot's Prometheus collectors. They are
// registered on the default registry and served on /metrics by the
// HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consultabot_lookups_total",
		Help: "Lookups per source and outcome (ok, empty, error).",
	}, []string{"source", "outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consultabot_cache_hits_total",
		Help: "Lookups served from the response cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consultabot_cache_misses_total",
		Help: "Lookups that had to hit the upstream.",
	})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consultabot_upstream_request_seconds",
		Help:    "Round-trip time of upstream requests, including retries.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 6, 10, 20, 40},
	}, []string{"source"})

	SourceHealth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "consultabot_source_health",
		Help: "Last probed health per source: 2 fast, 1 slow, 0 down.",
	}, []string{"source"})
)

const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

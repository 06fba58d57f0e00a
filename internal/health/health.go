// Package health classifies upstream round-trip latency into a
// three-level status and runs the periodic prober that feeds the menu
// icons.
package health

import (
	"context"
	"log"
	"sync"
	"time"

	"consultabot/internal/lookup"
	"consultabot/internal/metrics"
)

type Level string

const (
	Fast Level = "fast"
	Slow Level = "slow"
	Down Level = "down"
)

// Icon returns the emoji shown next to a source in the inline menus.
func (l Level) Icon() string {
	switch l {
	case Fast:
		return "🟢"
	case Slow:
		return "🟡"
	default:
		return "🔴"
	}
}

func (l Level) gauge() float64 {
	switch l {
	case Fast:
		return 2
	case Slow:
		return 1
	default:
		return 0
	}
}

// Thresholds are policy constants, configurable but not derived:
// latency under FastUnder is fast, under DownOver is slow, anything
// else (including a failed probe) is down.
type Thresholds struct {
	FastUnder time.Duration
	DownOver  time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{FastUnder: 2 * time.Second, DownOver: 6 * time.Second}
}

func (t Thresholds) Classify(latency time.Duration, ok bool) Level {
	switch {
	case !ok:
		return Down
	case latency < t.FastUnder:
		return Fast
	case latency < t.DownOver:
		return Slow
	default:
		return Down
	}
}

// Status is the result of the most recent probe of one source. Stale
// statuses are not invalidated; they represent "as of last probe".
type Status struct {
	Source    string
	Level     Level
	Latency   time.Duration
	CheckedAt time.Time
}

// probeQueries are harmless placeholder values per query kind, enough
// for an upstream to answer (or reject) quickly.
var probeQueries = map[lookup.Kind]string{
	lookup.KindCPF:     "00000000000",
	lookup.KindName:    "teste",
	lookup.KindPlate:   "AAA0000",
	lookup.KindChassis: "00000000000000000",
	lookup.KindIP:      "8.8.8.8",
	lookup.KindMAC:     "000000000000",
	lookup.KindEmail:   "teste@example.com",
	lookup.KindPhone:   "00000000000",
}

// Prober measures every registered source on a fixed interval and
// keeps the latest Status per source key. The fetcher it is given
// should have retries disabled so a probe measures a single request.
type Prober struct {
	registry   *lookup.Registry
	fetcher    *lookup.Fetcher
	interval   time.Duration
	timeout    time.Duration
	thresholds Thresholds
	logger     *log.Logger

	mu       sync.RWMutex
	statuses map[string]Status
	stop     chan struct{}
	stopOnce sync.Once
}

func NewProber(registry *lookup.Registry, fetcher *lookup.Fetcher, interval, timeout time.Duration, thresholds Thresholds, logger *log.Logger) *Prober {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[HEALTH] ", log.LstdFlags)
	}
	return &Prober{
		registry:   registry,
		fetcher:    fetcher,
		interval:   interval,
		timeout:    timeout,
		thresholds: thresholds,
		logger:     logger,
		statuses:   make(map[string]Status),
		stop:       make(chan struct{}),
	}
}

// Start probes once immediately, then on every tick until Stop.
func (p *Prober) Start() {
	ticker := time.NewTicker(p.interval)
	go func() {
		p.probeAll()
		for {
			select {
			case <-p.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				p.probeAll()
			}
		}
	}()
}

func (p *Prober) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// ProbeOnce runs a single synchronous probe round; used by the CLI.
func (p *Prober) ProbeOnce() {
	p.probeAll()
}

func (p *Prober) probeAll() {
	var wg sync.WaitGroup
	for _, src := range p.registry.All() {
		wg.Add(1)
		go func(src lookup.Source) {
			defer wg.Done()
			p.probe(src)
		}(src)
	}
	wg.Wait()
}

func (p *Prober) probe(src lookup.Source) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	query := probeQueries[src.Kind]
	start := time.Now()
	_, err := p.fetcher.Fetch(ctx, src, query)
	latency := time.Since(start)
	// an upstream error still proves the endpoint is alive; only
	// transport failures count as down
	ok := err == nil
	if _, upstream := err.(*lookup.UpstreamError); upstream {
		ok = true
	}
	level := p.thresholds.Classify(latency, ok)
	if level == Down {
		p.logger.Printf("probe %s: down (latency=%s err=%v)", src.Key, latency, err)
	}
	metrics.SourceHealth.WithLabelValues(src.Key).Set(level.gauge())

	p.mu.Lock()
	p.statuses[src.Key] = Status{Source: src.Key, Level: level, Latency: latency, CheckedAt: time.Now()}
	p.mu.Unlock()
}

// Snapshot returns a copy of the latest status per source key.
func (p *Prober) Snapshot() map[string]Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]Status, len(p.statuses))
	for k, v := range p.statuses {
		out[k] = v
	}
	return out
}

// Level returns the last probed level for a source, defaulting to
// Fast before the first probe has completed so menus do not start out
// all red.
func (p *Prober) Level(sourceKey string) Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if st, ok := p.statuses[sourceKey]; ok {
		return st.Level
	}
	return Fast
}

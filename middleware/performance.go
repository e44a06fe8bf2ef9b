package middleware

import (
	"sync"
	"time"

	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/goliatone/go-storefront-cache/store"
	"github.com/rs/zerolog"
)

// PerformanceConfig configures Performance.
type PerformanceConfig struct {
	// Enabled turns tracking on; production builds leave it off.
	Enabled bool
	// Capacity is the number of metrics kept.
	Capacity int
	// SlowThreshold logs a warning for actions slower than this.
	SlowThreshold time.Duration
}

// DefaultPerformanceConfig keeps 100 metrics and warns above 10ms.
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		Enabled:       true,
		Capacity:      100,
		SlowThreshold: 10 * time.Millisecond,
	}
}

// Metric is the measured duration of one dispatch.
type Metric struct {
	ActionType string
	Duration   time.Duration
	Timestamp  time.Time
}

// Performance measures how long each dispatch takes downstream of it.
type Performance struct {
	cfg    PerformanceConfig
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	metrics []Metric
	next    int
	full    bool
}

// PerformanceOption customizes Performance.
type PerformanceOption func(*Performance)

// WithPerformanceClock replaces the time source.
func WithPerformanceClock(now func() time.Time) PerformanceOption {
	return func(p *Performance) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPerformance creates a Performance monitor.
func NewPerformance(logger zerolog.Logger, cfg PerformanceConfig, opts ...PerformanceOption) *Performance {
	def := DefaultPerformanceConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = def.SlowThreshold
	}

	p := &Performance{
		cfg:     cfg,
		logger:  logging.Component(logger, "performance"),
		now:     time.Now,
		metrics: make([]Metric, cfg.Capacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Middleware returns the store middleware recording durations.
func (p *Performance) Middleware() store.Middleware {
	return func(api store.API) func(next store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			if !p.cfg.Enabled {
				return next
			}
			return func(a store.Action) bool {
				start := p.now()
				applied := next(a)
				p.Record(a.Type, p.now().Sub(start))
				return applied
			}
		}
	}
}

// Record adds a metric, evicting the oldest one when full.
func (p *Performance) Record(actionType string, d time.Duration) {
	p.mu.Lock()
	p.metrics[p.next] = Metric{ActionType: actionType, Duration: d, Timestamp: p.now()}
	p.next = (p.next + 1) % len(p.metrics)
	if p.next == 0 {
		p.full = true
	}
	p.mu.Unlock()

	if d > p.cfg.SlowThreshold {
		p.logger.Warn().
			Str("action", actionType).
			Dur("duration", d).
			Msg("slow action")
	}
}

// Metrics returns the recorded metrics, oldest first.
func (p *Performance) Metrics() []Metric {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.full {
		return append([]Metric(nil), p.metrics[:p.next]...)
	}
	out := make([]Metric, 0, len(p.metrics))
	out = append(out, p.metrics[p.next:]...)
	return append(out, p.metrics[:p.next]...)
}

// SlowActions returns the metrics slower than threshold. A zero threshold
// uses the configured one.
func (p *Performance) SlowActions(threshold time.Duration) []Metric {
	if threshold <= 0 {
		threshold = p.cfg.SlowThreshold
	}

	var out []Metric
	for _, m := range p.Metrics() {
		if m.Duration > threshold {
			out = append(out, m)
		}
	}
	return out
}

// AverageTime returns the mean duration of actionType, or 0.
func (p *Performance) AverageTime(actionType string) time.Duration {
	var total time.Duration
	n := 0
	for _, m := range p.Metrics() {
		if m.ActionType == actionType {
			total += m.Duration
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// Report logs every slow action currently recorded.
func (p *Performance) Report() {
	if !p.cfg.Enabled {
		return
	}
	slow := p.SlowActions(0)
	if len(slow) == 0 {
		return
	}

	p.logger.Info().Int("count", len(slow)).Dur("threshold", p.cfg.SlowThreshold).Msg("slow actions report")
	for _, m := range slow {
		p.logger.Info().Str("action", m.ActionType).Dur("duration", m.Duration).Msg("slow action")
	}
}

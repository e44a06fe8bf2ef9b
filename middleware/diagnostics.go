package middleware

import (
	"sync"
	"time"

	"github.com/goliatone/go-storefront-cache/pkg/logging"
	"github.com/goliatone/go-storefront-cache/store"
	"github.com/rs/zerolog"
)

// DiagnosticsConfig configures Diagnostics.
type DiagnosticsConfig struct {
	// Enabled turns logging on; production builds leave it off.
	Enabled bool
	// QueueSize flushes the batch as soon as it holds this many entries.
	QueueSize int
	// FlushInterval flushes the batch after this long without new entries.
	FlushInterval time.Duration
}

// DefaultDiagnosticsConfig batches up to 50 entries with a one second
// quiet period.
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		Enabled:       true,
		QueueSize:     50,
		FlushInterval: time.Second,
	}
}

type logEntry struct {
	stage   string
	action  string
	message string
	at      time.Time
}

// Diagnostics batches async lifecycle log lines and writes them through
// zerolog in groups.
type Diagnostics struct {
	cfg    DiagnosticsConfig
	logger zerolog.Logger

	mu    sync.Mutex
	queue []logEntry
	timer *time.Timer
}

// NewDiagnostics creates a Diagnostics logger.
func NewDiagnostics(logger zerolog.Logger, cfg DiagnosticsConfig) *Diagnostics {
	def := DefaultDiagnosticsConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	return &Diagnostics{
		cfg:    cfg,
		logger: logging.Component(logger, "diagnostics"),
	}
}

// Middleware returns the store middleware feeding the batch.
func (d *Diagnostics) Middleware() store.Middleware {
	return func(api store.API) func(next store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			if !d.cfg.Enabled {
				return next
			}
			return func(a store.Action) bool {
				if _, stage, ok := store.Lifecycle(a.Type); ok {
					d.record(stage, a)
				}
				return next(a)
			}
		}
	}
}

func (d *Diagnostics) record(stage string, a store.Action) {
	entry := logEntry{stage: stage, action: a.Type, at: time.Now()}
	switch stage {
	case "pending":
		entry.message = "loading started"
	case "fulfilled":
		entry.message = "action fulfilled"
	case "rejected":
		entry.message = a.ErrorMessage()
	}

	d.mu.Lock()
	d.queue = append(d.queue, entry)
	full := len(d.queue) >= d.cfg.QueueSize
	if !full {
		if d.timer != nil {
			d.timer.Stop()
		}
		d.timer = time.AfterFunc(d.cfg.FlushInterval, d.Flush)
	}
	d.mu.Unlock()

	if full {
		d.Flush()
	}
}

// Flush writes every queued entry now.
func (d *Diagnostics) Flush() {
	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	d.logger.Debug().Int("actions", len(batch)).Msg("api actions batch")
	for _, e := range batch {
		var ev *zerolog.Event
		if e.stage == "rejected" {
			ev = d.logger.Warn()
		} else {
			ev = d.logger.Debug()
		}
		ev.Str("action", e.action).
			Str("stage", e.stage).
			Time("at", e.at).
			Msg(e.message)
	}
}

// Pending returns the number of queued entries.
func (d *Diagnostics) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Close flushes the remaining entries.
func (d *Diagnostics) Close() error {
	d.Flush()
	return nil
}

package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/getvisid/visid/pkg/logging"
)

// Default discovery cadence and budget.
const (
	DefaultInterval = 500 * time.Millisecond
	DefaultBudget   = 6 * time.Second
)

// Source is the consent feed contract: Subscribe registers a handler that
// receives the new full category set on every consent change. A nil
// category slice means the event carried no payload; handlers must treat
// it as a no-op.
type Source interface {
	Subscribe(handler func(categories []string)) error
}

// Probe checks whether the consent source is available yet. It should
// return promptly; any network check must carry its own timeout.
type Probe func() (Source, bool)

// Discovery polls a Probe until the source appears or the budget runs
// out, then registers the handler at most once.
type Discovery struct {
	probe    Probe
	interval time.Duration
	budget   time.Duration
	log      *slog.Logger

	registered bool
}

// DiscoveryOption configures a Discovery.
type DiscoveryOption func(*Discovery)

// WithInterval overrides the polling interval.
func WithInterval(d time.Duration) DiscoveryOption {
	return func(di *Discovery) { di.interval = d }
}

// WithBudget overrides the total discovery window.
func WithBudget(d time.Duration) DiscoveryOption {
	return func(di *Discovery) { di.budget = d }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) DiscoveryOption {
	return func(di *Discovery) { di.log = log }
}

// NewDiscovery builds a discovery over probe with the default cadence.
func NewDiscovery(probe Probe, opts ...DiscoveryOption) *Discovery {
	d := &Discovery{
		probe:    probe,
		interval: DefaultInterval,
		budget:   DefaultBudget,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run probes for the consent source and registers handler on the first
// hit. It returns true if the handler was registered. Failure to find the
// source within the budget is not an error: the feed is best-effort and
// consent falls back to the cookie-recorded defaults. Run blocks until
// registration, budget exhaustion, or ctx cancellation, and never
// registers twice.
func (d *Discovery) Run(ctx context.Context, handler func(categories []string)) bool {
	if d.registered {
		return false
	}
	if d.trySubscribe(handler) {
		return true
	}

	ticker := time.NewTicker(d.interval)
	deadline := time.NewTimer(d.budget)
	// Both must be disarmed on every exit path so neither fires after the
	// handler is registered or discovery is abandoned.
	defer ticker.Stop()
	defer deadline.Stop()

	for {
		select {
		case <-ticker.C:
			if d.trySubscribe(handler) {
				return true
			}
		case <-deadline.C:
			d.log.Debug("consent source never appeared, giving up", "budget", d.budget)
			return false
		case <-ctx.Done():
			return false
		}
	}
}

func (d *Discovery) trySubscribe(handler func([]string)) bool {
	if d.registered {
		return true
	}
	src, ok := d.probe()
	if !ok {
		return false
	}
	if err := src.Subscribe(handler); err != nil {
		d.log.Debug("consent source subscribe failed", "error", err)
		return false
	}
	d.registered = true
	d.log.Debug("consent source handler registered")
	return true
}

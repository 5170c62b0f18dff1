package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/tooltip"
)

// Config configures the Prometheus metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "tooltip").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for recalculation duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the recalculation histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// recalcBuckets cover 5µs to 10ms; a recalculation is pure arithmetic plus
// a handful of style writes.
var recalcBuckets = []float64{.000005, .00001, .000025, .00005, .0001, .00025, .0005, .001, .0025, .01}

func defaultConfig() Config {
	return Config{
		Namespace: "tooltip",
		Buckets:   recalcBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records tooltip and bridge metrics. It implements
// tooltip.Observer. All methods are safe on a nil *Metrics.
//
// Metrics collected:
//   - tooltip_active: Gauge of attached tooltips by trigger
//   - tooltip_shows_total: Counter of shows by trigger
//   - tooltip_hides_total: Counter of hides by reason
//   - tooltip_recalculations_total: Counter of placements by side and flipped
//   - tooltip_recalculation_duration_seconds: Histogram of placement time
//   - tooltip_skipped_total: Counter of skipped recalculations by error code
//   - tooltip_degraded_total: Counter of placements that fell back to the viewport
//   - tooltip_bridge_sessions_active: Gauge of open bridge sessions
//   - tooltip_bridge_messages_total: Counter of client messages by type and status
//   - tooltip_bridge_patches_total: Counter of patches sent by op
//   - tooltip_bridge_websocket_errors_total: Counter of WebSocket errors
type Metrics struct {
	active         *prometheus.GaugeVec
	shows          *prometheus.CounterVec
	hides          *prometheus.CounterVec
	recalcs        *prometheus.CounterVec
	recalcDuration prometheus.Histogram
	skips          *prometheus.CounterVec
	degraded       prometheus.Counter

	sessions prometheus.Gauge
	messages *prometheus.CounterVec
	patches  *prometheus.CounterVec
	wsErrors *prometheus.CounterVec
}

var _ tooltip.Observer = (*Metrics)(nil)

// New registers the metrics with the configured registry.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Metrics{
		active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active",
			Help:        "Number of attached tooltips",
			ConstLabels: config.ConstLabels,
		}, []string{"trigger"}),

		shows:   counterVec("shows_total", "Total number of times a tooltip was shown", "trigger"),
		hides:   counterVec("hides_total", "Total number of times a tooltip was hidden", "reason"),
		recalcs: counterVec("recalculations_total", "Total number of applied placements", "side", "flipped"),

		recalcDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recalculation_duration_seconds",
			Help:        "Time to measure, place and style a tooltip",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		skips: counterVec("skipped_total", "Total number of skipped recalculations", "code"),

		degraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "degraded_total",
			Help:        "Total number of placements that fell back to the viewport",
			ConstLabels: config.ConstLabels,
		}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_sessions_active",
			Help:        "Number of open bridge sessions",
			ConstLabels: config.ConstLabels,
		}),

		messages: counterVec("bridge_messages_total", "Total number of client messages", "type", "status"),
		patches:  counterVec("bridge_patches_total", "Total number of patches sent to clients", "op"),
		wsErrors: counterVec("bridge_websocket_errors_total", "Total WebSocket errors by type", "type"),
	}
}

// OnAttach implements tooltip.Observer.
func (m *Metrics) OnAttach(trigger tooltip.ShowOn) {
	if m == nil {
		return
	}
	m.active.WithLabelValues(trigger.String()).Inc()
}

// OnClose implements tooltip.Observer.
func (m *Metrics) OnClose(trigger tooltip.ShowOn) {
	if m == nil {
		return
	}
	m.active.WithLabelValues(trigger.String()).Dec()
}

// OnShow implements tooltip.Observer.
func (m *Metrics) OnShow(trigger tooltip.ShowOn) {
	if m == nil {
		return
	}
	m.shows.WithLabelValues(trigger.String()).Inc()
}

// OnHide implements tooltip.Observer.
func (m *Metrics) OnHide(reason tooltip.HideReason) {
	if m == nil {
		return
	}
	m.hides.WithLabelValues(string(reason)).Inc()
}

// OnRecalculate implements tooltip.Observer.
func (m *Metrics) OnRecalculate(p tooltip.Placement, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.recalcs.WithLabelValues(p.Side.String(), strconv.FormatBool(p.Flipped())).Inc()
	m.recalcDuration.Observe(elapsed.Seconds())
	if p.Degraded {
		m.degraded.Inc()
	}
}

// OnSkip implements tooltip.Observer.
func (m *Metrics) OnSkip(err error) {
	if m == nil {
		return
	}
	code := errs.CodeOf(err)
	if code == "" {
		code = "unknown"
	}
	m.skips.WithLabelValues(code).Inc()
}

// SessionOpened records a new bridge session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed records a bridge session ending.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// RecordMessage records a processed client message.
func (m *Metrics) RecordMessage(msgType string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.messages.WithLabelValues(msgType, status).Inc()
}

// RecordPatches records count patches of kind op.
func (m *Metrics) RecordPatches(op string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.patches.WithLabelValues(op).Add(float64(count))
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(errorType).Inc()
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/toastd/pkg/toast"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toastd").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry. Tests pass a fresh
// prometheus.NewRegistry() so collectors do not collide.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "toastd",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds every collector toastd exports.
type Metrics struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	toastsShown       *prometheus.CounterVec
	toastsRemoved     prometheus.Counter
	containersCreated prometheus.Counter
	toastsDropped     *prometheus.CounterVec
	liveSessions      prometheus.Gauge
	framesSent        prometheus.Counter
}

var _ toast.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the collectors. Registering twice on the
// same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	base := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts(base("http_requests_total", "Total HTTP requests by method, route and status")),
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method", "route"}),
		toastsShown: factory.NewCounterVec(
			prometheus.CounterOpts(base("toasts_shown_total", "Toasts appended to a page by type")),
			[]string{"type"},
		),
		toastsRemoved: factory.NewCounter(
			prometheus.CounterOpts(base("toasts_removed_total", "Toasts removed when their lifetime elapsed")),
		),
		containersCreated: factory.NewCounter(
			prometheus.CounterOpts(base("toast_containers_created_total", "Toast containers created because the page had none")),
		),
		toastsDropped: factory.NewCounterVec(
			prometheus.CounterOpts(base("toasts_dropped_total", "Toasts that could not be displayed by reason")),
			[]string{"reason"},
		),
		liveSessions: factory.NewGauge(
			prometheus.GaugeOpts(base("live_sessions", "Number of live page sessions")),
		),
		framesSent: factory.NewCounter(
			prometheus.CounterOpts(base("live_frames_sent_total", "Frames written to live page connections")),
		),
	}
}

// Handler records request count and duration. Route labels use the chi
// route pattern, not the raw path, to keep cardinality bounded.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}

// routePattern returns the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// ToastShown implements toast.Observer. Types outside the known set are
// counted as "other".
func (m *Metrics) ToastShown(t toast.Type) {
	label := string(t)
	if !t.Known() {
		label = "other"
	}
	m.toastsShown.WithLabelValues(label).Inc()
}

// ToastRemoved implements toast.Observer.
func (m *Metrics) ToastRemoved() {
	m.toastsRemoved.Inc()
}

// ContainerCreated implements toast.Observer.
func (m *Metrics) ContainerCreated() {
	m.containersCreated.Inc()
}

// ToastDropped implements toast.Observer.
func (m *Metrics) ToastDropped(reason string) {
	m.toastsDropped.WithLabelValues(reason).Inc()
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	m.liveSessions.Inc()
}

// SessionClosed records a live session going away.
func (m *Metrics) SessionClosed() {
	m.liveSessions.Dec()
}

// FramesSent records count frames written to a live connection.
func (m *Metrics) FramesSent(count int) {
	m.framesSent.Add(float64(count))
}

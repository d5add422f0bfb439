package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/toastd/pkg/toast"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return NewMetrics(WithRegistry(prometheus.NewRegistry()))
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsConfigDefaults(t *testing.T) {
	config := defaultMetricsConfig()
	if config.Namespace != "toastd" {
		t.Errorf("Namespace = %q, want toastd", config.Namespace)
	}
	if config.Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should default to prometheus.DefaultRegisterer")
	}
	if len(config.Buckets) != len(prometheus.DefBuckets) {
		t.Errorf("Buckets = %v, want DefBuckets", config.Buckets)
	}
}

func TestMetricsOptions(t *testing.T) {
	config := defaultMetricsConfig()
	for _, opt := range []MetricsOption{
		WithNamespace("app"),
		WithSubsystem("web"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.1, 1}),
	} {
		opt(&config)
	}
	if config.Namespace != "app" || config.Subsystem != "web" {
		t.Errorf("namespace/subsystem = %q/%q", config.Namespace, config.Subsystem)
	}
	if config.ConstLabels["env"] != "test" {
		t.Errorf("ConstLabels = %v", config.ConstLabels)
	}
	if len(config.Buckets) != 2 {
		t.Errorf("Buckets = %v", config.Buckets)
	}
}

func TestMetricsToastObserver(t *testing.T) {
	m := newTestMetrics(t)

	m.ToastShown(toast.TypeSuccess)
	m.ToastShown(toast.TypeSuccess)
	m.ToastShown(toast.TypeError)
	m.ToastShown(toast.Type("custom"))
	m.ToastRemoved()
	m.ContainerCreated()
	m.ToastDropped("container_unavailable")

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"shown success", m.toastsShown.WithLabelValues("success"), 2},
		{"shown error", m.toastsShown.WithLabelValues("error"), 1},
		{"shown other", m.toastsShown.WithLabelValues("other"), 1},
		{"removed", m.toastsRemoved, 1},
		{"containers", m.containersCreated, 1},
		{"dropped", m.toastsDropped.WithLabelValues("container_unavailable"), 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMetricsNotifierIntegration(t *testing.T) {
	m := newTestMetrics(t)
	// A Notifier reports through the same interface; make sure it is accepted.
	var o toast.Observer = m
	o.ContainerCreated()
	if got := testutil.ToFloat64(m.containersCreated); got != 1 {
		t.Errorf("containers created = %v, want 1", got)
	}
}

func TestMetricsSessions(t *testing.T) {
	m := newTestMetrics(t)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.FramesSent(3)

	if got := testutil.ToFloat64(m.liveSessions); got != 1 {
		t.Errorf("live_sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.framesSent); got != 3 {
		t.Errorf("live_frames_sent_total = %v, want 3", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/quiet", func(w http.ResponseWriter, r *http.Request) {})

	for _, path := range []string{"/items/1", "/items/2", "/boom", "/quiet"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/items/{id}", "204")); got != 2 {
		t.Errorf("requests(/items/{id}, 204) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Errorf("requests(/boom, 500) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/quiet", "200")); got != 1 {
		t.Errorf("requests(/quiet, 200) = %v, want 1", got)
	}
	if got := histogramCount(t, m.requestDuration.WithLabelValues("GET", "/items/{id}")); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
}

func TestMetricsRegistryCollision(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))

	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	NewMetrics(WithRegistry(reg))
}

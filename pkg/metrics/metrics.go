// Package metrics exposes detection-run metrics for Prometheus scraping.
// Metrics include counters for technique outcomes, a histogram for
// per-technique execution time, and gauges for run duration and
// registry size.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/redpill/redpill/pkg/duration"
)

// Meter records detection metrics into a dedicated Prometheus registry.
type Meter struct {
	registry *prometheus.Registry

	runsTotal     prometheus.Counter
	outcomesTotal *prometheus.CounterVec

	techniqueSeconds *prometheus.HistogramVec

	runSeconds    prometheus.Gauge
	techniqueSize prometheus.Gauge

	mu     sync.Mutex
	server *http.Server
}

// NewMeter creates a Meter with all collectors registered.
func NewMeter() *Meter {
	reg := prometheus.NewRegistry()

	m := &Meter{
		registry: reg,
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redpill_runs_total",
			Help: "Total number of detection runs",
		}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redpill_technique_outcomes_total",
			Help: "Technique executions by outcome",
		}, []string{"technique", "outcome"}),
		techniqueSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redpill_technique_duration_seconds",
			Help:    "Per-technique execution time distribution",
			Buckets: prometheus.ExponentialBuckets(0.000001, 10, 9), // 1µs .. 100s
		}, []string{"technique"}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redpill_run_duration_seconds",
			Help: "Duration of the most recent detection run",
		}),
		techniqueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redpill_techniques_registered",
			Help: "Number of techniques in the most recent run",
		}),
	}

	reg.MustRegister(
		m.runsTotal,
		m.outcomesTotal,
		m.techniqueSeconds,
		m.runSeconds,
		m.techniqueSize,
	)
	return m
}

// ObserveTechnique records one technique execution.
func (m *Meter) ObserveTechnique(name, outcome string, elapsed time.Duration) {
	m.outcomesTotal.WithLabelValues(name, outcome).Inc()
	m.techniqueSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObserveRun records the completion of a full detection run.
func (m *Meter) ObserveRun(elapsed time.Duration, techniques int) {
	m.runsTotal.Inc()
	m.runSeconds.Set(elapsed.Seconds())
	m.techniqueSize.Set(float64(techniques))
}

// Handler returns an HTTP handler serving the metrics.
func (m *Meter) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given port.
// The server runs until Close is called.
func (m *Meter) Serve(port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server != nil {
		return fmt.Errorf("metrics: server already running")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	m.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  duration.MetricsRead,
		WriteTimeout: duration.MetricsWrite,
	}

	go func() {
		// ErrServerClosed is the normal shutdown path.
		_ = m.server.ListenAndServe()
	}()
	return nil
}

// Close shuts down the metrics server if one was started.
func (m *Meter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), duration.ShutdownTimeout)
	defer cancel()
	err := m.server.Shutdown(ctx)
	m.server = nil
	return err
}

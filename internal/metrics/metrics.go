// Package metrics exposes Prometheus collectors for the analysis engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the analysis collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	InFlight         prometheus.Gauge
	BatchSize        prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argo_analysis_total",
			Help: "Asset analyses completed, by outcome",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "argo_analysis_duration_seconds",
			Help:    "Latency of a single asset analysis including price fetches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "argo_analysis_in_flight",
			Help: "Asset analyses currently running",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "argo_analysis_batch_size",
			Help:    "Number of assets per batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	for _, c := range []prometheus.Collector{m.AnalysesTotal, m.AnalysisDuration, m.InFlight, m.BatchSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Start marks an analysis as in flight and returns a func that records its
// outcome and duration.
func (m *Metrics) Start() func(err error) {
	if m == nil {
		return func(error) {}
	}

	started := time.Now()

	m.InFlight.Inc()

	return func(err error) {
		m.InFlight.Dec()
		m.AnalysisDuration.Observe(time.Since(started).Seconds())

		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailure
		}

		m.AnalysesTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveBatch records the size of a batch.
func (m *Metrics) ObserveBatch(size int) {
	if m == nil {
		return
	}

	m.BatchSize.Observe(float64(size))
}

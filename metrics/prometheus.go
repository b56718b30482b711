package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsCollector records generation activity as Prometheus metrics.
// All methods are safe for concurrent use by dispatcher workers.
type PrometheusMetricsCollector struct {
	chunks        *prometheus.CounterVec
	rows          *prometheus.CounterVec
	chunkDuration prometheus.Histogram
	runDuration   prometheus.Histogram
	activeRuns    prometheus.Gauge
	validations   *prometheus.CounterVec
}

// NewPrometheusMetricsCollector registers the fakeset metrics on reg.
// Passing nil uses the default registerer.
func NewPrometheusMetricsCollector(reg prometheus.Registerer) *PrometheusMetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusMetricsCollector{
		chunks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fakeset_chunks_total",
				Help: "Chunks generated, by outcome",
			},
			[]string{"status"},
		),
		rows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fakeset_rows_total",
				Help: "Rows generated, by kind (unique or duplicate)",
			},
			[]string{"kind"},
		),
		chunkDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fakeset_chunk_duration_seconds",
			Help:    "Time to generate one chunk",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16), // 0.5ms to ~16s
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fakeset_run_duration_seconds",
			Help:    "Time to generate a whole dataset",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		activeRuns: f.NewGauge(prometheus.GaugeOpts{
			Name: "fakeset_active_runs",
			Help: "Generation runs in progress",
		}),
		validations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fakeset_validations_total",
				Help: "Dataset validations, by result",
			},
			[]string{"result"},
		),
	}
}

// RecordRunStart marks a run as in progress.
func (p *PrometheusMetricsCollector) RecordRunStart() {
	p.activeRuns.Inc()
}

// RecordRunEnd marks a run as finished.
func (p *PrometheusMetricsCollector) RecordRunEnd(duration time.Duration) {
	p.activeRuns.Dec()
	p.runDuration.Observe(duration.Seconds())
}

// RecordChunk counts a successfully generated chunk and its rows.
func (p *PrometheusMetricsCollector) RecordChunk(c ChunkResult) {
	p.chunks.WithLabelValues("success").Inc()
	p.rows.WithLabelValues("unique").Add(float64(c.UniqueRows))
	p.rows.WithLabelValues("duplicate").Add(float64(c.DuplicateRows))
	p.chunkDuration.Observe(c.Duration.Seconds())
}

// RecordChunkFailure counts a chunk whose generation failed.
func (p *PrometheusMetricsCollector) RecordChunkFailure() {
	p.chunks.WithLabelValues("error").Inc()
}

// RecordValidation counts a finished validation.
func (p *PrometheusMetricsCollector) RecordValidation(passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	p.validations.WithLabelValues(result).Inc()
}

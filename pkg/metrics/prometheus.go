package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	alertsTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	deviation   *prometheus.GaugeVec
	residual    prometheus.Gauge
	correlation prometheus.Gauge
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairwatch_alerts_total",
				Help: "Total number of residual deviation alerts raised",
			},
			[]string{"backend"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairwatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pairwatch_last_price",
				Help: "Last recorded trade price for a symbol",
			},
			[]string{"symbol"},
		),
		deviation: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pairwatch_deviation_pct",
				Help: "Latest percent deviation from the baseline mean",
			},
			[]string{"role"},
		),
		residual: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairwatch_residual_deviation_pct",
				Help: "Latest residual deviation of the target after subtracting the correlated reference move",
			},
		),
		correlation: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairwatch_pearson_correlation",
				Help: "Latest Pearson correlation between the joined candle series",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairwatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAlert records an alert delivered through a backend.
func (r *Recorder) RecordAlert(backend string) {
	r.alertsTotal.WithLabelValues(backend).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordDeviation records the latest percent deviation for a pipeline role.
func (r *Recorder) RecordDeviation(role string, pct float64) {
	r.deviation.WithLabelValues(role).Set(pct)
}

// RecordResidual records the latest residual deviation.
func (r *Recorder) RecordResidual(pct float64) {
	r.residual.Set(pct)
}

// RecordCorrelation records the latest correlation coefficient.
func (r *Recorder) RecordCorrelation(v float64) {
	r.correlation.Set(v)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

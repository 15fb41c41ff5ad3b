package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes forecast metrics on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	runsTotal   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	meanFinal   *prometheus.GaugeVec
	bandLower   *prometheus.GaugeVec
	bandUpper   *prometheus.GaugeVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbmforecast_runs_total",
				Help: "Total number of completed forecast runs",
			},
			[]string{"symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbmforecast_errors_total",
				Help: "Total number of failed forecast stages",
			},
			[]string{"stage"},
		),
		meanFinal: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gbmforecast_mean_final_price",
				Help: "Mean simulated price at the horizon",
			},
			[]string{"symbol"},
		),
		bandLower: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gbmforecast_lower_percentile_price",
				Help: "Lower percentile of simulated horizon prices",
			},
			[]string{"symbol"},
		),
		bandUpper: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gbmforecast_upper_percentile_price",
				Help: "Upper percentile of simulated horizon prices",
			},
			[]string{"symbol"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gbmforecast_last_price",
				Help: "Last observed historical price",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gbmforecast_stage_duration_seconds",
				Help:    "Duration of forecast stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordRun stores the headline numbers of a finished run.
func (r *Recorder) RecordRun(symbol string, lastPrice, mean, lower, upper float64) {
	r.runsTotal.WithLabelValues(symbol).Inc()
	r.lastPrice.WithLabelValues(symbol).Set(lastPrice)
	r.meanFinal.WithLabelValues(symbol).Set(mean)
	r.bandLower.WithLabelValues(symbol).Set(lower)
	r.bandUpper.WithLabelValues(symbol).Set(upper)
}

// RecordError records a failure in stage (fetch, simulate, export, notify).
func (r *Recorder) RecordError(stage string) {
	r.errorsTotal.WithLabelValues(stage).Inc()
}

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

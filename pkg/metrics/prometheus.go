package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchPages   *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastNav      *prometheus.GaugeVec
	evalDuration *prometheus.HistogramVec
	signals      *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchPages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navpulse_fetch_pages_total",
				Help: "Total NAV pages fetched from the upstream",
			},
			[]string{"fund"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastNav: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "navpulse_last_nav",
				Help: "Last recorded net asset value for a fund",
			},
			[]string{"fund"},
		),
		evalDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navpulse_eval_duration_seconds",
				Help:    "Duration of per-fund evaluations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"fund"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navpulse_signals_total",
				Help: "Action signals emitted, by label",
			},
			[]string{"signal"},
		),
	}
}

// RecordFetchPage records one fetched page for a fund.
func (r *Recorder) RecordFetchPage(fundID string) {
	r.fetchPages.WithLabelValues(fundID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastNav records the latest NAV for a fund.
func (r *Recorder) RecordLastNav(fundID string, value float64) {
	r.lastNav.WithLabelValues(fundID).Set(value)
}

// RecordEvalDuration records one fund evaluation's duration.
func (r *Recorder) RecordEvalDuration(fundID string, seconds float64) {
	r.evalDuration.WithLabelValues(fundID).Observe(seconds)
}

// RecordSignal counts an emitted signal label.
func (r *Recorder) RecordSignal(signal string) {
	r.signals.WithLabelValues(signal).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	fallbacks    *prometheus.CounterVec
	riskScore    *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pum_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "token"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pum_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pum_last_price",
				Help: "Last recorded price for a token",
			},
			[]string{"token"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pum_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pum_model_fallbacks_total",
				Help: "Forecast fits absorbed into a fallback model",
			},
			[]string{"model"},
		),
		riskScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pum_risk_overall_score",
				Help: "Most recent overall risk score per protocol",
			},
			[]string{"protocol"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, token string) {
	r.messagesSent.WithLabelValues(backend, token).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a token.
func (r *Recorder) RecordLastPrice(token string, price float64) {
	r.lastPrice.WithLabelValues(token).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordFallback records a fit absorbed into a fallback model.
func (r *Recorder) RecordFallback(model string) {
	r.fallbacks.WithLabelValues(model).Inc()
}

// RecordRiskScore records the latest assessment score for a protocol.
func (r *Recorder) RecordRiskScore(protocol string, score float64) {
	r.riskScore.WithLabelValues(protocol).Set(score)
}

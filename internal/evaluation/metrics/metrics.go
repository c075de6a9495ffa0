package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evaluation module.
type Metrics struct {
	// Requests created, labeled by outcome ("created", "self_request",
	// "duplicate", "cooldown", "error")
	RequestsCreated *prometheus.CounterVec

	// Resolutions by decision ("accepted", "rejected")
	RequestsResolved *prometheus.CounterVec

	// Redemption attempts by outcome ("verified", "invalid_code",
	// "date_mismatch", "forbidden", "error")
	Redemptions *prometheus.CounterVec

	// Latency of the redemption path, the in-person critical path
	RedeemLatency prometheus.Histogram
}

// New creates a new Metrics instance with all evaluation module metrics registered.
func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peakform_evaluation_requests_created_total",
			Help: "Total evaluation request creation attempts by outcome",
		}, []string{"outcome"}),

		RequestsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peakform_evaluation_requests_resolved_total",
			Help: "Total evaluation request resolutions by decision",
		}, []string{"decision"}),

		Redemptions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peakform_evaluation_redemptions_total",
			Help: "Total verification code redemption attempts by outcome",
		}, []string{"outcome"}),

		RedeemLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "peakform_evaluation_redeem_duration_seconds",
			Help:    "Duration of verification code redemption",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a creation attempt outcome.
func (m *Metrics) IncrementCreated(outcome string) {
	if m != nil {
		m.RequestsCreated.WithLabelValues(outcome).Inc()
	}
}

// IncrementResolved records a resolution decision.
func (m *Metrics) IncrementResolved(decision string) {
	if m != nil {
		m.RequestsResolved.WithLabelValues(decision).Inc()
	}
}

// IncrementRedemption records a redemption attempt outcome.
func (m *Metrics) IncrementRedemption(outcome string) {
	if m != nil {
		m.Redemptions.WithLabelValues(outcome).Inc()
	}
}

// ObserveRedeemLatency records the duration of a redemption.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRedeemLatency(start time.Time) {
	if m != nil {
		m.RedeemLatency.Observe(time.Since(start).Seconds())
	}
}

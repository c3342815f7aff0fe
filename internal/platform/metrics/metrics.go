package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the verifier.
type Metrics struct {
	Verifications    *prometheus.CounterVec
	OnlineCheckMs    prometheus.Histogram
	PollAttempts     prometheus.Counter
	CookieBootstraps *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_verifications_total",
			Help: "Verification results by credential type and terminal status",
		}, []string{"type", "status"}),
		OnlineCheckMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idverify_online_check_duration_ms",
			Help:    "Latency of PhilSys online status checks in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		PollAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idverify_consent_poll_attempts_total",
			Help: "Total eVerify consent-polling attempts",
		}),
		CookieBootstraps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_cookie_bootstraps_total",
			Help: "PhilSys session cookie bootstrap attempts by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveVerification records a terminal verification result.
// Nil-safe so services constructed without metrics keep working in tests.
func (m *Metrics) ObserveVerification(idType, status string) {
	if m == nil || m.Verifications == nil {
		return
	}
	m.Verifications.WithLabelValues(idType, status).Inc()
}

// ObserveOnlineCheck records the latency of one PhilSys online check.
func (m *Metrics) ObserveOnlineCheck(d time.Duration) {
	if m == nil || m.OnlineCheckMs == nil {
		return
	}
	m.OnlineCheckMs.Observe(float64(d.Microseconds()) / 1000.0)
}

// IncrementPollAttempts counts one consent-poll attempt.
func (m *Metrics) IncrementPollAttempts() {
	if m == nil || m.PollAttempts == nil {
		return
	}
	m.PollAttempts.Inc()
}

// ObserveCookieBootstrap counts a cookie bootstrap by outcome ("ok"/"fail").
func (m *Metrics) ObserveCookieBootstrap(outcome string) {
	if m == nil || m.CookieBootstraps == nil {
		return
	}
	m.CookieBootstraps.WithLabelValues(outcome).Inc()
}

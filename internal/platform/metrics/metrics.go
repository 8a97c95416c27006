package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the onboarding workflow.
type Metrics struct {
	CredentialsIssued    prometheus.Counter
	CredentialValidation *prometheus.CounterVec
	OnboardingOutcomes   *prometheus.CounterVec
	GatewayLatency       *prometheus.HistogramVec
	Notifications        *prometheus.CounterVec
	ApplicationsReceived prometheus.Counter
	RequestLatency       *prometheus.HistogramVec
	RateLimited          *prometheus.CounterVec
}

// New creates and registers all collectors on reg. Passing a fresh registry
// keeps tests independent of the global default.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CredentialsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "instructorhub_setup_credentials_issued_total",
			Help: "Setup credentials minted",
		}),
		CredentialValidation: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instructorhub_setup_credential_validations_total",
			Help: "Setup credential validations by outcome",
		}, []string{"outcome"}),
		OnboardingOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instructorhub_onboarding_completions_total",
			Help: "Onboarding completion attempts by entry mode and outcome",
		}, []string{"mode", "outcome"}),
		GatewayLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "instructorhub_gateway_request_duration_seconds",
			Help:    "Payment gateway call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "result"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instructorhub_notifications_total",
			Help: "Templated emails by kind and delivery result",
		}, []string{"kind", "result"}),
		ApplicationsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "instructorhub_applications_received_total",
			Help: "Instructor applications accepted by intake",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "instructorhub_http_request_duration_seconds",
			Help:    "HTTP handler latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instructorhub_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter",
		}, []string{"scope"}),
	}
}

// The helpers below are nil-safe so services can run without metrics in tests.

func (m *Metrics) IncCredentialsIssued() {
	if m == nil {
		return
	}
	m.CredentialsIssued.Inc()
}

func (m *Metrics) ObserveValidation(outcome string) {
	if m == nil {
		return
	}
	m.CredentialValidation.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveOnboarding(mode, outcome string) {
	if m == nil {
		return
	}
	m.OnboardingOutcomes.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveGateway(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.GatewayLatency.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveNotification(kind string, delivered bool) {
	if m == nil {
		return
	}
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	m.Notifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncApplicationsReceived() {
	if m == nil {
		return
	}
	m.ApplicationsReceived.Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, statusClass(status)).Observe(d.Seconds())
}

func (m *Metrics) IncRateLimited(scope string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(scope).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

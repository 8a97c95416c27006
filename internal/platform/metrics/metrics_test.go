package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncCredentialsIssued()
	m.ObserveOnboarding("token", "success")
	m.ObserveOnboarding("token", "success")
	m.ObserveNotification("approval", false)
	m.ObserveGateway("create_subaccount", time.Now(), errors.New("boom"))
	m.IncRateLimited("public")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CredentialsIssued))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OnboardingOutcomes.WithLabelValues("token", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("approval", "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GatewayLatency))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("public")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncCredentialsIssued()
		m.ObserveValidation("valid")
		m.ObserveOnboarding("session", "failed")
		m.ObserveNotification("welcome", true)
		m.ObserveRequest("/banks", 200, time.Millisecond)
		m.IncRateLimited("public")
	})
}

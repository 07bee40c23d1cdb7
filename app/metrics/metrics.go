package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const OutcomeSuccess = "success"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	authEvents   *prometheus.CounterVec
	mailFailures prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobboard_auth_events_total",
				Help: "Total number of completed auth and application operations",
			},
			[]string{"operation", "outcome"},
		),
		mailFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jobboard_mail_failures_total",
				Help: "Total number of outbound emails that failed to send",
			},
		),
	}
	reg.MustRegister(m.authEvents, m.mailFailures)
	return m
}

func (m *Metrics) RecordAuthEvent(operation, outcome string) {
	m.authEvents.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordMailFailure() {
	m.mailFailures.Inc()
}

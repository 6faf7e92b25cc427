package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submitted *prometheus.CounterVec
	Reviewed  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_registrations_submitted_total",
			Help: "Registration applications submitted, by requested role",
		}, []string{"role"}),
		Reviewed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_registrations_reviewed_total",
			Help: "Registration applications reviewed, by decision",
		}, []string{"action"}),
	}
}

func (m *Metrics) IncrementSubmitted(role string) {
	m.Submitted.WithLabelValues(role).Inc()
}

func (m *Metrics) IncrementReviewed(action string) {
	m.Reviewed.WithLabelValues(action).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts recorded pledges and their value.
type Metrics struct {
	DonationsRecorded *prometheus.CounterVec
	AmountCents       prometheus.Counter
	Rejected          prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DonationsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_donations_recorded_total",
			Help: "Donations recorded, by frequency and donor type",
		}, []string{"frequency", "donor"}),
		AmountCents: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_donation_amount_cents_total",
			Help: "Sum of pledged amounts in cents",
		}),
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_donations_rejected_total",
			Help: "Donations refused because the campaign was not accepting them",
		}),
	}
}

// IncrementRecorded records one pledge. donorType is "guest" or "member".
func (m *Metrics) IncrementRecorded(frequency, donorType string, amountCents int64) {
	m.DonationsRecorded.WithLabelValues(frequency, donorType).Inc()
	m.AmountCents.Add(float64(amountCents))
}

func (m *Metrics) IncrementRejected() {
	m.Rejected.Inc()
}

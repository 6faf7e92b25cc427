package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks one-time code issuance and verification outcomes.
type Metrics struct {
	ChallengesIssued prometheus.Counter
	CodesResent      prometheus.Counter
	Verifications    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChallengesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_otp_challenges_issued_total",
			Help: "OTP challenges issued at login",
		}),
		CodesResent: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_otp_codes_resent_total",
			Help: "OTP codes re-issued after the resend countdown",
		}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_otp_verifications_total",
			Help: "OTP verification attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.ChallengesIssued.Inc()
}

func (m *Metrics) IncrementResent() {
	m.CodesResent.Inc()
}

// IncrementVerification records one attempt. result is one of verified,
// mismatch, locked, expired or used.
func (m *Metrics) IncrementVerification(result string) {
	m.Verifications.WithLabelValues(result).Inc()
}

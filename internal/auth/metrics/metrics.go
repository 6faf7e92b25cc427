package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	TokensIssued  prometheus.Counter
	Logouts       prometheus.Counter
	UsersCreated  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_login_attempts_total",
			Help: "Password login attempts by outcome",
		}, []string{"outcome"}),
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_access_tokens_issued_total",
			Help: "Access tokens issued after OTP verification",
		}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_logouts_total",
			Help: "Sessions revoked by logout",
		}),
		UsersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_users_created_total",
			Help: "Accounts created by role",
		}, []string{"role"}),
	}
}

// IncrementLogin records a login attempt. outcome is challenged, bad_credentials or blocked.
func (m *Metrics) IncrementLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTokensIssued() {
	m.TokensIssued.Inc()
}

func (m *Metrics) IncrementLogouts() {
	m.Logouts.Inc()
}

func (m *Metrics) IncrementUsersCreated(role string) {
	m.UsersCreated.WithLabelValues(role).Inc()
}

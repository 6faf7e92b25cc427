package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Checks          *prometheus.CounterVec
	StoreErrors     prometheus.Counter
	FallbackActive  prometheus.Gauge
	AllowlistBypass *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_ratelimit_checks_total",
			Help: "Rate limit checks, by class and outcome",
		}, []string{"class", "outcome"}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_ratelimit_store_errors_total",
			Help: "Primary bucket store failures",
		}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "civicfund_ratelimit_fallback_active",
			Help: "1 while checks are served by the in-memory fallback",
		}),
		AllowlistBypass: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_ratelimit_allowlist_bypass_total",
			Help: "Checks skipped for allowlisted identifiers, by class",
		}, []string{"class"}),
	}
}

func (m *Metrics) RecordCheck(class string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.Checks.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	m.StoreErrors.Inc()
}

func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}

func (m *Metrics) RecordAllowlistBypass(class string) {
	m.AllowlistBypass.WithLabelValues(class).Inc()
}

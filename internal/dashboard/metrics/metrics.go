package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AggregationLatency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AggregationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civicfund_dashboard_aggregation_seconds",
			Help:    "Time spent building dashboard views, by view",
			Buckets: prometheus.DefBuckets,
		}, []string{"view"}),
	}
}

func (m *Metrics) ObserveAggregation(view string, d time.Duration) {
	m.AggregationLatency.WithLabelValues(view).Observe(d.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks campaign submissions, review outcomes and listing latency.
type Metrics struct {
	CampaignsSubmitted prometheus.Counter
	ReviewActions      *prometheus.CounterVec
	ListDuration       prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CampaignsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_campaigns_submitted_total",
			Help: "Total number of campaigns submitted for review",
		}),
		ReviewActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_campaign_review_actions_total",
			Help: "Campaign review actions applied, by action",
		}, []string{"action"}),
		ListDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicfund_campaign_list_duration_seconds",
			Help:    "Duration of campaign listing queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementSubmitted() {
	m.CampaignsSubmitted.Inc()
}

func (m *Metrics) IncrementReviewAction(action string) {
	m.ReviewActions.WithLabelValues(action).Inc()
}

// ObserveList records the duration of a listing call started at start.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}

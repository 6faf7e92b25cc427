package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Searches    *prometheus.CounterVec
	PostViews   prometheus.Counter
	ResultSizes prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civicfund_blog_searches_total",
			Help: "Blog searches, by sort order",
		}, []string{"sort"}),
		PostViews: factory.NewCounter(prometheus.CounterOpts{
			Name: "civicfund_blog_post_views_total",
			Help: "Blog post detail views",
		}),
		ResultSizes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicfund_blog_search_results",
			Help:    "Number of posts returned by a blog search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
}

func (m *Metrics) ObserveSearch(sort string, results int) {
	m.Searches.WithLabelValues(sort).Inc()
	m.ResultSizes.Observe(float64(results))
}

func (m *Metrics) IncrementViews() {
	m.PostViews.Inc()
}

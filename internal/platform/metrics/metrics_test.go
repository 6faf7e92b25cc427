package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveHTTPRequest(http.MethodGet, "/campaigns/{slug}", http.StatusOK, 0.01)
	m.ObserveHTTPRequest(http.MethodGet, "/campaigns/{slug}", http.StatusOK, 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/campaigns/{slug}", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	New(reg).ObserveHTTPRequest(http.MethodPost, "/auth/login", http.StatusUnauthorized, 0.1)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `civicfund_http_requests_total{method="POST",route="/auth/login",status="401"} 1`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

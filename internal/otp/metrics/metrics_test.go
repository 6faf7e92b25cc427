package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestVerificationCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncrementIssued()
	m.IncrementVerification("mismatch")
	m.IncrementVerification("mismatch")
	m.IncrementVerification("verified")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChallengesIssued))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verifications.WithLabelValues("mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("verified")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CodesResent))
}

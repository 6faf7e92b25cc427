package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) TestNewBreakerIsClosed() {
	b := New("audit-kafka")
	s.False(b.IsOpen())
	s.Equal(StateClosed, b.State())
	s.Equal("audit-kafka", b.Name())
	s.True(b.Allow())
}

func (s *BreakerSuite) TestOpening() {
	s.Run("opens on the threshold failure only", func() {
		b := New("audit-kafka", WithFailureThreshold(2))

		useFallback, change := b.RecordFailure()
		s.False(useFallback)
		s.False(change.Opened)

		useFallback, change = b.RecordFailure()
		s.True(useFallback)
		s.True(change.Opened)
		s.True(b.IsOpen())
	})

	s.Run("failures while open report no transition", func() {
		b := New("audit-kafka", WithFailureThreshold(1))
		b.RecordFailure()

		useFallback, change := b.RecordFailure()
		s.True(useFallback)
		s.False(change.Opened)
	})

	s.Run("a success clears the failure streak", func() {
		b := New("audit-kafka", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		s.False(b.IsOpen())
	})
}

func (s *BreakerSuite) TestClosing() {
	s.Run("closes after consecutive successes", func() {
		b := New("audit-kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()

		usePrimary, change := b.RecordSuccess()
		s.False(usePrimary)
		s.False(change.Closed)

		usePrimary, change = b.RecordSuccess()
		s.True(usePrimary)
		s.True(change.Closed)
		s.Equal(StateClosed, b.State())
	})

	s.Run("a failure while open restarts the success streak", func() {
		b := New("audit-kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		b.RecordSuccess()
		s.True(b.IsOpen())
		b.RecordSuccess()
		s.False(b.IsOpen())
	})
}

func (s *BreakerSuite) TestAllowProbesOncePerInterval() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := New("audit-kafka",
		WithFailureThreshold(1),
		WithProbeInterval(time.Second),
		WithClock(func() time.Time { return now }),
	)
	b.RecordFailure()

	s.False(b.Allow(), "no probe before the interval elapses")

	now = now.Add(time.Second)
	s.True(b.Allow())
	s.False(b.Allow(), "only one probe per interval")
}

func (s *BreakerSuite) TestReset() {
	b := New("audit-kafka", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	s.Equal(StateClosed, b.State())
	s.True(b.Allow())
}

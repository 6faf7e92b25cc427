package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	id "civicfund/pkg/domain"
	audit "civicfund/pkg/platform/audit"
	"civicfund/pkg/platform/circuit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	mu      sync.Mutex
	err     error
	records []*kgo.Record
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

type recordingEmitter struct {
	events []audit.Event
}

func (r *recordingEmitter) Emit(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

type PublisherSuite struct {
	suite.Suite
	producer *fakeProducer
	fallback *recordingEmitter
	pub      *Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.producer = &fakeProducer{}
	s.fallback = &recordingEmitter{}
	s.pub = New(s.producer, "civicfund.audit",
		WithFallback(s.fallback),
		WithBreaker(circuit.New("audit-kafka", circuit.WithFailureThreshold(2))),
	)
}

func (s *PublisherSuite) TestEmitProducesKeyedRecord() {
	userID := id.UserID(uuid.New())
	err := s.pub.Emit(context.Background(), audit.Event{
		Action:  string(audit.EventCampaignApproved),
		Subject: "campaign-1",
		UserID:  userID,
	})
	s.Require().NoError(err)
	s.Require().Len(s.producer.records, 1)

	record := s.producer.records[0]
	s.Equal("civicfund.audit", record.Topic)
	s.Equal("campaign-1", string(record.Key))

	var body payload
	s.Require().NoError(json.Unmarshal(record.Value, &body))
	s.Equal("campaign_approved", body.Action)
	s.Equal("compliance", body.Category)
	s.Equal(userID.String(), body.UserID)
	s.NotEmpty(body.ID)
}

func (s *PublisherSuite) TestProduceFailureFallsBack() {
	s.producer.err = errors.New("broker down")

	err := s.pub.Emit(context.Background(), audit.Event{Action: string(audit.EventOTPFailed)})
	s.Require().NoError(err)
	s.Len(s.fallback.events, 1)
}

func (s *PublisherSuite) TestOpenCircuitSkipsProducer() {
	s.producer.err = errors.New("broker down")
	for range 2 {
		s.Require().NoError(s.pub.Emit(context.Background(), audit.Event{Action: string(audit.EventOTPFailed)}))
	}
	s.True(s.pub.breaker.IsOpen())

	s.producer.err = nil
	s.Require().NoError(s.pub.Emit(context.Background(), audit.Event{Action: string(audit.EventOTPFailed)}))
	s.Empty(s.producer.records, "open circuit must not reach the producer before the probe interval")
	s.Len(s.fallback.events, 3)
}

func (s *PublisherSuite) TestFailureWithoutFallbackReturnsError() {
	pub := New(&fakeProducer{err: errors.New("broker down")}, "civicfund.audit")
	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventOTPFailed)})
	s.Error(err)
}

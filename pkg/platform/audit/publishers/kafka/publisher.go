// Package kafka streams audit events to a Kafka topic. While the broker is
// unhealthy a circuit breaker routes events to a fallback emitter.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "civicfund/pkg/platform/audit"
	"civicfund/pkg/platform/circuit"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client the publisher uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher implements audit.Emitter on Kafka.
type Publisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	fallback audit.Emitter
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for breaker transitions and produce failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithFallback sets the emitter used while the circuit is open.
func WithFallback(fallback audit.Emitter) Option {
	return func(p *Publisher) {
		p.fallback = fallback
	}
}

// WithBreaker replaces the default breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

// New creates a publisher writing to topic.
func New(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("audit-kafka"),
		timeout:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type payload struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Emit produces the event keyed by subject so events for one record stay ordered.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if !p.breaker.Allow() {
		return p.emitFallback(ctx, event)
	}

	record, err := p.record(event)
	if err != nil {
		return err
	}

	produceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.producer.ProduceSync(produceCtx, record).FirstErr(); err != nil {
		_, change := p.breaker.RecordFailure()
		if change.Opened && p.logger != nil {
			p.logger.WarnContext(ctx, "audit kafka circuit opened", "breaker", p.breaker.Name(), "error", err)
		}
		if p.fallback != nil {
			return p.emitFallback(ctx, event)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}

	if _, change := p.breaker.RecordSuccess(); change.Closed && p.logger != nil {
		p.logger.InfoContext(ctx, "audit kafka circuit closed", "breaker", p.breaker.Name())
	}
	return nil
}

func (p *Publisher) emitFallback(ctx context.Context, event audit.Event) error {
	if p.fallback == nil {
		return errors.New("audit kafka circuit open and no fallback configured")
	}
	return p.fallback.Emit(ctx, event)
}

func (p *Publisher) record(event audit.Event) (*kgo.Record, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	body := payload{
		ID:        event.ID,
		Category:  string(audit.AuditEvent(event.Action).Category()),
		Timestamp: event.Timestamp.UTC(),
		Action:    event.Action,
		Subject:   event.Subject,
		ActorID:   event.ActorID,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	}
	if !event.UserID.IsNil() {
		body.UserID = event.UserID.String()
	}
	value, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	key := event.Subject
	if key == "" {
		key = body.UserID
	}
	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(body.Category)},
		},
	}, nil
}

// NewClient connects a franz-go client to brokers and makes sure the audit
// topic exists.
func NewClient(ctx context.Context, brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}
	if err := ensureTopic(ctx, kadm.NewClient(client), topic); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func ensureTopic(ctx context.Context, admin *kadm.Client, topic string) error {
	resps, err := admin.CreateTopics(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

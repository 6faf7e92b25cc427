// Package publisher writes audit events to a Store and mirrors them to the
// structured log. With an async buffer, Emit never blocks the request path.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "civicfund/pkg/platform/audit"
	"civicfund/pkg/requestcontext"

	"github.com/google/uuid"
)

// Publisher fans audit events out to a store and the logger.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger mirrors every event to the logger at info level.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer makes Emit enqueue into a buffer of the given size, drained
// by a single background goroutine. A full buffer falls back to a synchronous write.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

// NewPublisher creates a publisher over store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit stamps the event with an ID, timestamp and request metadata, then persists it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.logger != nil {
		p.logger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"category", event.Category,
			"subject", event.Subject,
			"user_id", event.UserID.String(),
			"actor_id", event.ActorID,
			"request_id", event.RequestID,
		)
	}

	if p.buffer != nil {
		select {
		case p.buffer <- event:
			return nil
		default:
		}
	}
	return p.store.Append(context.WithoutCancel(ctx), event)
}

// ListRecent returns the most recent events from the underlying store.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains pending async events and stops the worker.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
			p.logger.ErrorContext(ctx, "failed to persist audit event",
				"action", event.Action,
				"error", err,
			)
		}
		cancel()
	}
}

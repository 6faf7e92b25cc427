package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"civicfund/internal/ratelimit/metrics"
	"civicfund/internal/ratelimit/models"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/platform/circuit"
	"civicfund/pkg/requestcontext"
)

// Buckets is a sliding window counter store.
type Buckets interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Limiter checks per-class limits against a primary bucket store. When a
// fallback is configured, a circuit breaker routes checks to it while the
// primary keeps failing.
type Limiter struct {
	primary        Buckets
	fallback       Buckets
	breaker        *circuit.Breaker
	limits         map[models.Class]models.Limit
	allowlist      map[string]struct{}
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(l *Limiter) {
		l.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithFallback serves checks from fallback while the breaker is open.
func WithFallback(fallback Buckets, breaker *circuit.Breaker) Option {
	return func(l *Limiter) {
		l.fallback = fallback
		l.breaker = breaker
	}
}

// WithAllowlist exempts identifiers (client IPs) from every limit.
func WithAllowlist(identifiers []string) Option {
	return func(l *Limiter) {
		for _, ident := range identifiers {
			if ident = strings.TrimSpace(ident); ident != "" {
				l.allowlist[ident] = struct{}{}
			}
		}
	}
}

func New(primary Buckets, limits map[models.Class]models.Limit, opts ...Option) (*Limiter, error) {
	for class, limit := range limits {
		if !class.IsValid() {
			return nil, fmt.Errorf("unknown rate limit class %q", class)
		}
		if err := limit.Validate(); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", class, err)
		}
	}
	l := &Limiter{
		primary:   primary,
		limits:    limits,
		allowlist: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fallback != nil && l.breaker == nil {
		l.breaker = circuit.New("ratelimit")
	}
	return l, nil
}

// Check consumes one slot for identifier in class. Classes without a
// configured limit are denied.
func (l *Limiter) Check(ctx context.Context, class models.Class, identifier string) (*models.Result, error) {
	limit, ok := l.limits[class]
	if !ok {
		if l.logger != nil {
			l.logger.ErrorContext(ctx, "rate limit class not configured", "class", class)
		}
		now := requestcontext.Now(ctx)
		return &models.Result{Allowed: false, ResetAt: now.Add(time.Minute), RetryAfter: 60}, nil
	}
	if _, ok := l.allowlist[identifier]; ok {
		if l.metrics != nil {
			l.metrics.RecordAllowlistBypass(string(class))
		}
		return &models.Result{Allowed: true, Limit: limit.Requests, Remaining: limit.Requests}, nil
	}

	key := models.Key(class, identifier)
	result, err := l.allow(ctx, key, limit)
	if err != nil {
		return nil, err
	}
	if l.metrics != nil {
		l.metrics.RecordCheck(string(class), result.Allowed)
	}
	if !result.Allowed {
		l.logAudit(ctx, audit.EventRateLimitReached,
			"subject", string(class),
			"reason", fmt.Sprintf("%d requests per %s", limit.Requests, limit.Window),
		)
	}
	return result, nil
}

func (l *Limiter) allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	if l.fallback == nil {
		return l.primary.Allow(ctx, key, limit.Requests, limit.Window)
	}
	if !l.breaker.Allow() {
		return l.degraded(ctx, key, limit)
	}

	result, err := l.primary.Allow(ctx, key, limit.Requests, limit.Window)
	if err != nil {
		if l.metrics != nil {
			l.metrics.IncrementStoreErrors()
		}
		_, change := l.breaker.RecordFailure()
		if change.Opened {
			if l.logger != nil {
				l.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback", "error", err)
			}
			if l.metrics != nil {
				l.metrics.SetFallbackActive(true)
			}
		}
		return l.degraded(ctx, key, limit)
	}
	if _, change := l.breaker.RecordSuccess(); change.Closed {
		if l.logger != nil {
			l.logger.InfoContext(ctx, "rate limit store recovered")
		}
		if l.metrics != nil {
			l.metrics.SetFallbackActive(false)
		}
	}
	return result, nil
}

func (l *Limiter) degraded(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	result, err := l.fallback.Allow(ctx, key, limit.Requests, limit.Window)
	if err != nil {
		return nil, err
	}
	result.Degraded = true
	return result, nil
}

func (l *Limiter) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "ip", ip)
	}
	if l.logger != nil {
		args := append(attributes, "event", string(event), "log_type", "audit")
		l.logger.WarnContext(ctx, string(event), args...)
	}
	if l.auditPublisher == nil {
		return
	}
	if err := l.auditPublisher.Emit(ctx, audit.NewEvent(event, attributes...)); err != nil && l.logger != nil {
		l.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

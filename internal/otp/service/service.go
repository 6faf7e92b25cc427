package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"civicfund/internal/otp/metrics"
	"civicfund/internal/otp/models"
	"civicfund/internal/otp/store"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/platform/sentinel"
	"civicfund/pkg/requestcontext"
)

// MsgInvalidCode is shown to the user verbatim on a wrong code.
const MsgInvalidCode = "Invalid verification code"

type Store interface {
	Create(ctx context.Context, c *models.Challenge) error
	FindByID(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error)
	Update(ctx context.Context, challengeID id.ChallengeID, fn func(*models.Challenge) error) (*models.Challenge, error)
}

// CodeSender delivers a plaintext code to the challenge's user.
type CodeSender interface {
	SendCode(ctx context.Context, c *models.Challenge, code string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service issues and verifies one-time codes. Codes are stored as bcrypt hashes.
type Service struct {
	store          Store
	sender         CodeSender
	policy         models.Policy
	demoMode       bool
	bcryptCost     int
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPolicy(p models.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithDemoMode makes every issued code models.DemoCode.
func WithDemoMode(enabled bool) Option {
	return func(s *Service) {
		s.demoMode = enabled
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(store Store, sender CodeSender, opts ...Option) *Service {
	s := &Service{
		store:  store,
		sender: sender,
		policy: models.Policy{
			TTL:            5 * time.Minute,
			ResendCooldown: 30 * time.Second,
			MaxAttempts:    5,
		},
		bcryptCost: bcrypt.DefaultCost,
		tracer:     otel.Tracer("civicfund/otp"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) DemoMode() bool { return s.demoMode }

// Issue starts a challenge for userID and hands the code to the sender.
func (s *Service) Issue(ctx context.Context, userID id.UserID) (*models.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "otp.Issue", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	code, hash, err := s.newCode()
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	c := models.NewChallenge(id.ChallengeID(uuid.New()), userID, hash, s.policy, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, c); err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification challenge")
	}
	if err := s.sender.SendCode(ctx, c, code); err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deliver verification code")
	}
	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
	return c, nil
}

// Verify checks code against the challenge. Every wrong code is counted, and
// the challenge is consumed on success.
func (s *Service) Verify(ctx context.Context, challengeID id.ChallengeID, code string) (*models.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "otp.Verify", trace.WithAttributes(
		attribute.String("challenge.id", challengeID.String()),
	))
	defer span.End()

	code, err := models.ParseCode(code)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	c, err := s.store.Update(ctx, challengeID, func(c *models.Challenge) error {
		if err := c.CheckUsable(now); err != nil {
			return err
		}
		matched := bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) == nil
		return c.Attempt(matched, now)
	})
	if err != nil {
		if c != nil {
			s.recordFailure(ctx, c, err)
		}
		err = s.mapError(err)
		recordSpanError(span, err)
		return nil, err
	}

	s.incrementVerification("verified")
	s.logAudit(ctx, audit.EventOTPVerified,
		"user_id", c.UserID.String(),
		"challenge_id", c.ID.String(),
	)
	return c, nil
}

// Resend rotates the code once the resend countdown has run out.
func (s *Service) Resend(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "otp.Resend", trace.WithAttributes(
		attribute.String("challenge.id", challengeID.String()),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	var code string
	c, err := s.store.Update(ctx, challengeID, func(c *models.Challenge) error {
		if err := c.CanResend(now); err != nil {
			return err
		}
		fresh, hash, err := s.newCode()
		if err != nil {
			return err
		}
		code = fresh
		c.Rotate(hash, s.policy, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) && c != nil {
			err = dErrors.New(dErrors.CodeTooManyRequests,
				fmt.Sprintf("a new code can be requested in %d seconds", Seconds(c.ResendIn(now))))
		} else {
			err = s.mapError(err)
		}
		recordSpanError(span, err)
		return nil, err
	}

	if err := s.sender.SendCode(ctx, c, code); err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deliver verification code")
	}
	if s.metrics != nil {
		s.metrics.IncrementResent()
	}
	s.logAudit(ctx, audit.EventOTPResent,
		"user_id", c.UserID.String(),
		"challenge_id", c.ID.String(),
	)
	return c, nil
}

// Status returns the challenge so callers can render both countdowns.
func (s *Service) Status(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error) {
	c, err := s.store.FindByID(ctx, challengeID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return c, nil
}

// Seconds rounds a countdown up to whole seconds.
func Seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func (s *Service) newCode() (code, hash string, err error) {
	code = models.DemoCode
	if !s.demoMode {
		code, err = models.GenerateCode()
		if err != nil {
			return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
		}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), s.bcryptCost)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash verification code")
	}
	return code, string(hashed), nil
}

func (s *Service) recordFailure(ctx context.Context, c *models.Challenge, err error) {
	switch {
	case errors.Is(err, models.ErrCodeMismatch):
		s.incrementVerification("mismatch")
		s.logAudit(ctx, audit.EventOTPFailed,
			"user_id", c.UserID.String(),
			"challenge_id", c.ID.String(),
			"attempts", c.Attempts,
		)
	case errors.Is(err, models.ErrLocked):
		s.incrementVerification("locked")
		s.logAudit(ctx, audit.EventOTPLocked,
			"user_id", c.UserID.String(),
			"challenge_id", c.ID.String(),
			"attempts", c.Attempts,
		)
	case errors.Is(err, sentinel.ErrExpired):
		s.incrementVerification("expired")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.incrementVerification("used")
	}
}

func (s *Service) mapError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "verification challenge not found")
	case errors.Is(err, models.ErrCodeMismatch):
		return dErrors.New(dErrors.CodeUnauthorized, MsgInvalidCode)
	case errors.Is(err, models.ErrLocked):
		return dErrors.New(dErrors.CodeForbidden, "too many attempts, please sign in again")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeUnauthorized, "verification code expired")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeUnauthorized, "verification code already used")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification challenge")
}

func (s *Service) incrementVerification(result string) {
	if s.metrics != nil {
		s.metrics.IncrementVerification(result)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if s.logger != nil {
		args := append(attributes, "event", string(event), "log_type", "audit")
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.NewEvent(event, attributes...)); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

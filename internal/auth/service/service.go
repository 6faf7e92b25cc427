package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"civicfund/internal/auth/metrics"
	"civicfund/internal/auth/models"
	otpmodels "civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.User, error)
	Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error)
}

// OTPService is the second login factor.
type OTPService interface {
	Issue(ctx context.Context, userID id.UserID) (*otpmodels.Challenge, error)
	Verify(ctx context.Context, challengeID id.ChallengeID, code string) (*otpmodels.Challenge, error)
	Resend(ctx context.Context, challengeID id.ChallengeID) (*otpmodels.Challenge, error)
	Status(ctx context.Context, challengeID id.ChallengeID) (*otpmodels.Challenge, error)
	DemoMode() bool
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, sessionID id.SessionID, role id.Role, expiresIn time.Duration) (string, error)
}

// RevocationList blocks a session's tokens until they would have expired.
type RevocationList interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns accounts and the password + OTP login flow.
type Service struct {
	users          UserStore
	otp            OTPService
	tokens         TokenIssuer
	revocations    RevocationList
	tokenTTL       time.Duration
	bcryptCost     int
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	dummyOnce sync.Once
	dummyHash []byte
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

func WithRevocationList(list RevocationList) Option {
	return func(s *Service) {
		s.revocations = list
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(users UserStore, otp OTPService, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:      users,
		otp:        otp,
		tokens:     tokens,
		tokenTTL:   time.Hour,
		bcryptCost: bcrypt.DefaultCost,
		tracer:     otel.Tracer("civicfund/auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenTTL is the lifetime of issued access tokens.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "ip", ip)
	}
	if device := requestcontext.Device(ctx); device != "" {
		attributes = append(attributes, "device", device)
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

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authmodels "civicfund/internal/auth/models"
	authservice "civicfund/internal/auth/service"
	"civicfund/internal/registration/metrics"
	"civicfund/internal/registration/models"
	"civicfund/internal/registration/store"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/audit"
	txcontext "civicfund/pkg/platform/tx"
	"civicfund/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.Registration) error
	FindByID(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Registration, error)
	Execute(ctx context.Context, registrationID id.RegistrationID, validate func(*models.Registration) error, mutate func(*models.Registration)) (*models.Registration, error)
}

// Accounts creates the user behind an approved application.
type Accounts interface {
	HashPassword(password string) (string, error)
	CreateUser(ctx context.Context, in authservice.NewAccount) (*authmodels.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Application is a submitted registration form with the plaintext password.
type Application struct {
	FullName     string
	Email        string
	Phone        string
	Role         id.Role
	Organization string
	Address      string
	Documents    []models.DocumentMeta
	Password     string
}

// Service accepts registration applications and runs the admin review queue.
type Service struct {
	store          Store
	accounts       Accounts
	tx             txcontext.Runner
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

func WithTxRunner(runner txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func New(store Store, accounts Accounts, opts ...Option) *Service {
	s := &Service{
		store:    store,
		accounts: accounts,
		tx:       txcontext.NewLocalRunner(),
		tracer:   otel.Tracer("civicfund/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit queues an application for review. The password is hashed right away
// and only the hash is kept.
func (s *Service) Submit(ctx context.Context, app Application) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Submit", trace.WithAttributes(
		attribute.String("registration.role", app.Role.String()),
	))
	defer span.End()

	hash, err := s.accounts.HashPassword(app.Password)
	if err != nil {
		return nil, err
	}
	r, err := models.NewRegistration(id.RegistrationID(uuid.New()), models.Submission{
		FullName:     app.FullName,
		Email:        app.Email,
		Phone:        app.Phone,
		Role:         app.Role,
		Organization: app.Organization,
		Address:      app.Address,
		Documents:    app.Documents,
		PasswordHash: hash,
	}, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.store.Create(ctx, r); err != nil {
		recordSpanError(span, err)
		if errors.Is(err, store.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an application for this email is already awaiting review")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration")
	}

	s.logAudit(ctx, audit.EventRegistrationSubmitted,
		"subject", r.ID.String(),
		"role", r.Role.String(),
	)
	if s.metrics != nil {
		s.metrics.IncrementSubmitted(r.Role.String())
	}
	return r, nil
}

// Approve creates the applicant's account and marks the application approved
// in one unit of work. The account is created while the registration row is
// held, so a concurrent review sees either a pending or an approved record.
func (s *Service) Approve(ctx context.Context, registrationID id.RegistrationID, note string) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Approve", trace.WithAttributes(
		attribute.String("registration.id", registrationID.String()),
	))
	defer span.End()

	reviewer := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)
	var approved *models.Registration
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var userID id.UserID
		var err error
		approved, err = s.store.Execute(ctx, registrationID,
			func(r *models.Registration) error {
				if err := r.CanReview(models.ActionApprove, note); err != nil {
					return dErrors.New(dErrors.CodeConflict, err.Error())
				}
				u, err := s.accounts.CreateUser(ctx, authservice.NewAccount{
					Email:        r.Email,
					FullName:     r.FullName,
					PasswordHash: r.PasswordHash,
					Role:         r.Role,
				})
				if err != nil {
					return err
				}
				userID = u.ID
				return nil
			},
			func(r *models.Registration) {
				r.ApplyReview(models.ActionApprove, reviewer, userID, note, now)
			},
		)
		return err
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, s.mapReviewError(err)
	}

	s.logAudit(ctx, audit.EventRegistrationApproved,
		"subject", approved.ID.String(),
		"actor_id", reviewer.String(),
		"user_id", approved.UserID.String(),
	)
	s.incrementReviewed(models.ActionApprove)
	return approved, nil
}

// Reject closes the application. A reason is required.
func (s *Service) Reject(ctx context.Context, registrationID id.RegistrationID, reason string) (*models.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Reject", trace.WithAttributes(
		attribute.String("registration.id", registrationID.String()),
	))
	defer span.End()

	reviewer := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)
	var rejected *models.Registration
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rejected, err = s.store.Execute(ctx, registrationID,
			func(r *models.Registration) error {
				if err := r.CanReview(models.ActionReject, reason); err != nil {
					if !r.IsPending() {
						return dErrors.New(dErrors.CodeConflict, err.Error())
					}
					return dErrors.New(dErrors.CodeValidation, err.Error())
				}
				return nil
			},
			func(r *models.Registration) {
				r.ApplyReview(models.ActionReject, reviewer, id.UserID{}, reason, now)
			},
		)
		return err
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, s.mapReviewError(err)
	}

	s.logAudit(ctx, audit.EventRegistrationRejected,
		"subject", rejected.ID.String(),
		"actor_id", reviewer.String(),
		"reason", rejected.ReviewNote,
	)
	s.incrementReviewed(models.ActionReject)
	return rejected, nil
}

// Review dispatches an admin decision by action name.
func (s *Service) Review(ctx context.Context, registrationID id.RegistrationID, action models.Action, note string) (*models.Registration, error) {
	switch action {
	case models.ActionApprove:
		return s.Approve(ctx, registrationID, note)
	case models.ActionReject:
		return s.Reject(ctx, registrationID, note)
	}
	return nil, dErrors.New(dErrors.CodeBadRequest, "unknown registration action: "+string(action))
}

func (s *Service) Get(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error) {
	return s.load(ctx, registrationID)
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.Registration, error) {
	registrations, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return registrations, nil
}

// CountByStatus tallies the review queue for the admin overview.
func (s *Service) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	all, err := s.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	counts := map[models.Status]int{
		models.StatusPending:  0,
		models.StatusApproved: 0,
		models.StatusRejected: 0,
	}
	for _, r := range all {
		counts[r.Status]++
	}
	return counts, nil
}

func (s *Service) load(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error) {
	r, err := s.store.FindByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	return r, nil
}

func (s *Service) mapReviewError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to review registration")
}

func (s *Service) incrementReviewed(action models.Action) {
	if s.metrics != nil {
		s.metrics.IncrementReviewed(string(action))
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "ip", ip)
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

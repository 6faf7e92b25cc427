package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"civicfund/internal/campaign/metrics"
	"civicfund/internal/campaign/models"
	"civicfund/internal/campaign/store"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/requestcontext"
)

// maxSlugAttempts bounds the numbered-suffix retries when two campaigns share a title.
const maxSlugAttempts = 5

type Store interface {
	Create(ctx context.Context, c *models.Campaign) error
	FindByID(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error)
	FindBySlug(ctx context.Context, slug string) (*models.Campaign, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Campaign, error)
	Execute(ctx context.Context, campaignID id.CampaignID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the campaign catalog and its review lifecycle.
type Service struct {
	store          Store
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, tracer: otel.Tracer("civicfund/campaign")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPublic returns active campaigns only, whatever statuses the caller asked for.
func (s *Service) ListPublic(ctx context.Context, filter models.ListFilter) ([]*models.Campaign, error) {
	filter.Statuses = []models.Status{models.StatusActive}
	return s.list(ctx, "campaign.ListPublic", filter)
}

// AdminList returns campaigns in any status.
func (s *Service) AdminList(ctx context.Context, filter models.ListFilter) ([]*models.Campaign, error) {
	return s.list(ctx, "campaign.AdminList", filter)
}

// ListByOrganizer returns every campaign submitted by organizerID.
func (s *Service) ListByOrganizer(ctx context.Context, organizerID id.UserID) ([]*models.Campaign, error) {
	return s.list(ctx, "campaign.ListByOrganizer", models.ListFilter{OrganizerID: organizerID})
}

func (s *Service) list(ctx context.Context, spanName string, filter models.ListFilter) ([]*models.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()
	start := time.Now()
	defer s.observeList(start)

	campaigns, err := s.store.List(ctx, filter)
	if err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list campaigns")
	}
	span.SetAttributes(attribute.Int("campaign.count", len(campaigns)))
	return campaigns, nil
}

// Get resolves a campaign by UUID or slug.
func (s *Service) Get(ctx context.Context, ref string) (*models.Campaign, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "campaign reference is required")
	}

	var (
		c   *models.Campaign
		err error
	)
	if parsed, parseErr := uuid.Parse(ref); parseErr == nil {
		c, err = s.store.FindByID(ctx, id.CampaignID(parsed))
	} else {
		c, err = s.store.FindBySlug(ctx, strings.ToLower(ref))
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load campaign")
	}
	return c, nil
}

// GetPublic is Get restricted to campaigns visible on the public site.
func (s *Service) GetPublic(ctx context.Context, ref string) (*models.Campaign, error) {
	c, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if c.Status != models.StatusActive && c.Status != models.StatusCompleted {
		return nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
	}
	return c, nil
}

// Submit creates a campaign for the calling organizer and moves it to pending_review.
func (s *Service) Submit(ctx context.Context, draft models.Draft) (*models.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "campaign.Submit")
	defer span.End()

	now := requestcontext.Now(ctx)
	c, err := models.NewCampaign(id.CampaignID(uuid.New()), draft, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := c.CanReview(models.ActionSubmit, ""); err != nil {
		return nil, dErrors.New(dErrors.CodeConflict, err.Error())
	}
	c.ApplyReview(models.ActionSubmit, "", now)

	if err := s.create(ctx, c); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("campaign.id", c.ID.String()))
	s.logAudit(ctx, audit.EventCampaignSubmitted,
		"subject", c.ID.String(),
		"user_id", draft.OrganizerID.String(),
	)
	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
	}
	return c, nil
}

// create inserts c, renaming its slug with a numbered suffix while the slug is taken.
func (s *Service) create(ctx context.Context, c *models.Campaign) error {
	base := c.Slug
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		err := s.store.Create(ctx, c)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create campaign")
		}
		if attempt == maxSlugAttempts-1 {
			c.Slug = base + "-" + uuid.NewString()[:8]
		} else {
			c.Slug = base + "-" + strconv.Itoa(attempt+1)
		}
	}
	return dErrors.New(dErrors.CodeConflict, "a campaign with this title already exists")
}

var reviewEvents = map[models.Action]audit.AuditEvent{
	models.ActionSubmit:    audit.EventCampaignSubmitted,
	models.ActionApprove:   audit.EventCampaignApproved,
	models.ActionReject:    audit.EventCampaignRejected,
	models.ActionSuspend:   audit.EventCampaignSuspended,
	models.ActionReinstate: audit.EventCampaignReinstated,
	models.ActionComplete:  audit.EventCampaignCompleted,
}

// Review applies an admin action to exactly one campaign. Illegal transitions
// return conflict and leave the campaign untouched.
func (s *Service) Review(ctx context.Context, campaignID id.CampaignID, action models.Action, note string) (*models.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "campaign.Review", trace.WithAttributes(
		attribute.String("campaign.id", campaignID.String()),
		attribute.String("campaign.action", string(action)),
	))
	defer span.End()

	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, campaignID,
		func(c *models.Campaign) error {
			if err := c.CanReview(action, note); err != nil {
				return dErrors.New(dErrors.CodeConflict, err.Error())
			}
			return nil
		},
		func(c *models.Campaign) {
			c.ApplyReview(action, note, now)
		},
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
		}
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update campaign")
	}

	s.logAudit(ctx, reviewEvents[action],
		"subject", campaignID.String(),
		"actor_id", requestcontext.UserID(ctx).String(),
		"reason", strings.TrimSpace(note),
	)
	if s.metrics != nil {
		s.metrics.IncrementReviewAction(string(action))
	}
	return updated, nil
}

// RecordDonation adds a pledge to the campaign totals. Campaigns that are not
// active, or that have ended, return conflict.
func (s *Service) RecordDonation(ctx context.Context, campaignID id.CampaignID, amountCents int64) (*models.Campaign, error) {
	ctx, span := s.tracer.Start(ctx, "campaign.RecordDonation")
	defer span.End()

	if amountCents <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "donation amount must be positive")
	}
	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, campaignID,
		func(c *models.Campaign) error {
			if err := c.CanAcceptDonation(now); err != nil {
				return dErrors.New(dErrors.CodeConflict, err.Error())
			}
			return nil
		},
		func(c *models.Campaign) {
			c.ApplyDonation(amountCents, now)
		},
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "campaign not found")
		}
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record donation on campaign")
	}
	return updated, nil
}

// CountByStatus feeds the admin overview counters.
func (s *Service) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	all, err := s.store.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list campaigns")
	}
	counts := make(map[models.Status]int)
	for _, c := range all {
		counts[c.Status]++
	}
	return counts, nil
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

func (s *Service) observeList(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	campaignmodels "civicfund/internal/campaign/models"
	"civicfund/internal/dashboard/metrics"
	"civicfund/internal/dashboard/models"
	donationmodels "civicfund/internal/donation/models"
	registrationmodels "civicfund/internal/registration/models"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/requestcontext"
)

const (
	// aggregationTimeout bounds the concurrent fetches behind one view.
	aggregationTimeout = 5 * time.Second
	seriesMonths       = 12
	recentDonations    = 5
	topCampaigns       = 5
)

type Donations interface {
	List(ctx context.Context, filter donationmodels.ListFilter) ([]*donationmodels.Donation, error)
}

type Campaigns interface {
	AdminList(ctx context.Context, filter campaignmodels.ListFilter) ([]*campaignmodels.Campaign, error)
	CountByStatus(ctx context.Context) (map[campaignmodels.Status]int, error)
}

type Users interface {
	CountByRole(ctx context.Context) (map[id.Role]int, error)
}

type Registrations interface {
	CountByStatus(ctx context.Context) (map[registrationmodels.Status]int, error)
}

// Service builds read-only dashboard views from the other modules.
type Service struct {
	donations     Donations
	campaigns     Campaigns
	users         Users
	registrations Registrations
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(donations Donations, campaigns Campaigns, users Users, registrations Registrations, opts ...Option) *Service {
	s := &Service{
		donations:     donations,
		campaigns:     campaigns,
		users:         users,
		registrations: registrations,
		tracer:        otel.Tracer("civicfund/dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DonorSummary fetches the donor's donations and the campaign catalogue
// concurrently, then aggregates.
func (s *Service) DonorSummary(ctx context.Context, donorID id.UserID) (*models.DonorSummary, error) {
	if donorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	ctx, span := s.tracer.Start(ctx, "dashboard.DonorSummary", trace.WithAttributes(
		attribute.String("user.id", donorID.String()),
	))
	defer span.End()
	defer s.observe("donor", time.Now())

	donations, lookup, err := s.gather(ctx, donationmodels.ListFilter{DonorID: donorID})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return models.Summarize(donations, lookup, requestcontext.Now(ctx), seriesMonths, recentDonations), nil
}

// Analytics aggregates every donation on the platform.
func (s *Service) Analytics(ctx context.Context) (*models.Analytics, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Analytics")
	defer span.End()
	defer s.observe("analytics", time.Now())

	donations, lookup, err := s.gather(ctx, donationmodels.ListFilter{})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return models.Analyze(donations, lookup, requestcontext.Now(ctx), seriesMonths, topCampaigns), nil
}

// Overview collects the admin counters in parallel.
func (s *Service) Overview(ctx context.Context) (*models.Overview, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Overview")
	defer span.End()
	defer s.observe("overview", time.Now())

	ctx, cancel := context.WithTimeout(ctx, aggregationTimeout)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var (
		roles         map[id.Role]int
		registrations map[registrationmodels.Status]int
		campaigns     map[campaignmodels.Status]int
	)
	g.Go(func() error {
		var err error
		roles, err = s.users.CountByRole(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		registrations, err = s.registrations.CountByStatus(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		campaigns, err = s.campaigns.CountByStatus(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		recordSpanError(span, err)
		return nil, s.wrap(ctx, err)
	}

	out := &models.Overview{
		UsersByRole:           make(map[string]int, len(roles)),
		RegistrationsByStatus: make(map[string]int, len(registrations)),
		CampaignsByStatus:     make(map[string]int, len(campaigns)),
	}
	for role, n := range roles {
		out.UsersByRole[role.String()] = n
	}
	for status, n := range registrations {
		out.RegistrationsByStatus[string(status)] = n
	}
	for status, n := range campaigns {
		out.CampaignsByStatus[string(status)] = n
	}
	out.PendingReviews = registrations[registrationmodels.StatusPending] + campaigns[campaignmodels.StatusPendingReview]
	return out, nil
}

func (s *Service) gather(ctx context.Context, filter donationmodels.ListFilter) ([]*donationmodels.Donation, map[id.CampaignID]*campaignmodels.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, aggregationTimeout)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var (
		donations []*donationmodels.Donation
		campaigns []*campaignmodels.Campaign
	)
	g.Go(func() error {
		var err error
		donations, err = s.donations.List(ctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		campaigns, err = s.campaigns.AdminList(ctx, campaignmodels.ListFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, s.wrap(ctx, err)
	}
	return donations, models.IndexCampaigns(campaigns), nil
}

func (s *Service) wrap(ctx context.Context, err error) error {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "dashboard aggregation failed", "error", err)
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "dashboard took too long to load")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
}

func (s *Service) observe(view string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveAggregation(view, time.Since(start))
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

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

	campaignmodels "civicfund/internal/campaign/models"
	"civicfund/internal/donation/metrics"
	"civicfund/internal/donation/models"
	"civicfund/internal/donation/store"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/audit"
	txcontext "civicfund/pkg/platform/tx"
	"civicfund/pkg/requestcontext"
)

// supporterListLimit caps the public supporter list on a campaign page.
const supporterListLimit = 10

type Store interface {
	Create(ctx context.Context, d *models.Donation) error
	FindByID(ctx context.Context, donationID id.DonationID) (*models.Donation, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Donation, error)
}

// CampaignLedger resolves campaigns and applies pledges to their totals.
type CampaignLedger interface {
	Get(ctx context.Context, ref string) (*campaignmodels.Campaign, error)
	RecordDonation(ctx context.Context, campaignID id.CampaignID, amountCents int64) (*campaignmodels.Campaign, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Receipt is what a donor sees after pledging.
type Receipt struct {
	Donation *models.Donation
	Campaign *campaignmodels.Campaign
}

// Service records pledges against active campaigns.
type Service struct {
	store          Store
	campaigns      CampaignLedger
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

// WithTxRunner replaces the default local runner, typically with a SQL runner
// when the stores share a database.
func WithTxRunner(runner txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func New(store Store, campaigns CampaignLedger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		campaigns: campaigns,
		tx:        txcontext.NewLocalRunner(),
		tracer:    otel.Tracer("civicfund/donation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Donate records a pledge against the referenced campaign and bumps its totals
// in the same unit of work. No payment is captured.
func (s *Service) Donate(ctx context.Context, campaignRef string, pledge models.Pledge) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Donate", trace.WithAttributes(
		attribute.String("campaign.ref", campaignRef),
	))
	defer span.End()

	c, err := s.campaigns.Get(ctx, campaignRef)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		s.incrementRejected()
		return nil, dErrors.New(dErrors.CodeConflict, "campaign is not accepting donations")
	}

	now := requestcontext.Now(ctx)
	donation, err := models.NewDonation(id.DonationID(uuid.New()), c.ID, pledge, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	var updated *campaignmodels.Campaign
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		updated, txErr = s.campaigns.RecordDonation(ctx, c.ID, donation.AmountCents)
		if txErr != nil {
			return txErr
		}
		if txErr = s.store.Create(ctx, donation); txErr != nil {
			return dErrors.Wrap(txErr, dErrors.CodeInternal, "failed to record donation")
		}
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.incrementRejected()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logAudit(ctx, audit.EventDonationRecorded,
		"subject", donation.ID.String(),
		"user_id", donation.DonorID.String(),
		"campaign_id", c.ID.String(),
		"amount_cents", donation.AmountCents,
	)
	if s.metrics != nil {
		donorType := "member"
		if donation.IsGuest() {
			donorType = "guest"
		}
		s.metrics.IncrementRecorded(string(donation.Frequency), donorType, donation.AmountCents)
	}
	return &Receipt{Donation: donation, Campaign: updated}, nil
}

// ListForDonor returns the donor's pledges, newest first.
func (s *Service) ListForDonor(ctx context.Context, donorID id.UserID, limit int) ([]*models.Donation, error) {
	if donorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return s.List(ctx, models.ListFilter{DonorID: donorID, Limit: limit})
}

// ListSupporters returns the most recent pledges to an active campaign.
func (s *Service) ListSupporters(ctx context.Context, campaignRef string) ([]*models.Donation, error) {
	c, err := s.campaigns.Get(ctx, campaignRef)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, models.ListFilter{CampaignID: c.ID, Limit: supporterListLimit})
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.Donation, error) {
	donations, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return donations, nil
}

// Get returns a donation visible to the caller: its donor or an admin.
func (s *Service) Get(ctx context.Context, donationID id.DonationID) (*models.Donation, error) {
	d, err := s.store.FindByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation")
	}
	caller := requestcontext.UserID(ctx)
	if requestcontext.Role(ctx) != id.RoleAdmin && (d.DonorID.IsNil() || d.DonorID != caller) {
		return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
	}
	return d, nil
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

func (s *Service) incrementRejected() {
	if s.metrics != nil {
		s.metrics.IncrementRejected()
	}
}

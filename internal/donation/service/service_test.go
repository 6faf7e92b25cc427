package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,CampaignLedger,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	campaignmodels "civicfund/internal/campaign/models"
	"civicfund/internal/donation/metrics"
	"civicfund/internal/donation/models"
	"civicfund/internal/donation/service/mocks"
	"civicfund/internal/donation/store"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/requestcontext"
)

type DonationServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockLedger *mocks.MockCampaignLedger
	mockAudit  *mocks.MockAuditPublisher
	store      *store.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
	ctx        context.Context
	now        time.Time
}

func TestDonationServiceSuite(t *testing.T) {
	suite.Run(t, new(DonationServiceSuite))
}

func (s *DonationServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockLedger = mocks.NewMockCampaignLedger(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store, s.mockLedger,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.mockAudit),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *DonationServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func activeCampaign() *campaignmodels.Campaign {
	return &campaignmodels.Campaign{
		ID:        id.CampaignID(uuid.New()),
		Slug:      "school-meals",
		Title:     "School Meals",
		GoalCents: 100_000,
		Status:    campaignmodels.StatusActive,
	}
}

func pledge(amount int64) models.Pledge {
	return models.Pledge{
		DonorName:   "Alex Kim",
		Email:       "alex@example.com",
		AmountCents: amount,
		Frequency:   models.FrequencyMonthly,
	}
}

func (s *DonationServiceSuite) TestDonate() {
	s.Run("records the pledge and bumps the campaign", func() {
		c := activeCampaign()
		bumped := *c
		bumped.RaisedCents = 5_000
		bumped.DonorCount = 1
		donor := id.UserID(uuid.New())
		p := pledge(5_000)
		p.DonorID = donor

		s.mockLedger.EXPECT().Get(gomock.Any(), "school-meals").Return(c, nil)
		s.mockLedger.EXPECT().RecordDonation(gomock.Any(), c.ID, int64(5_000)).Return(&bumped, nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, ev audit.Event) error {
				s.Equal(string(audit.EventDonationRecorded), ev.Action)
				s.Equal(donor, ev.UserID)
				return nil
			})

		receipt, err := s.service.Donate(s.ctx, "school-meals", p)
		s.Require().NoError(err)
		s.Equal(int64(5_000), receipt.Campaign.RaisedCents)
		s.Equal(s.now, receipt.Donation.CreatedAt)

		stored, err := s.store.List(s.ctx, models.ListFilter{DonorID: donor})
		s.Require().NoError(err)
		s.Len(stored, 1)
		s.InDelta(5_000, testutil.ToFloat64(s.metrics.AmountCents), 0)
	})

	s.Run("inactive campaign is a conflict", func() {
		c := activeCampaign()
		c.Status = campaignmodels.StatusSuspended
		s.mockLedger.EXPECT().Get(gomock.Any(), c.ID.String()).Return(c, nil)

		_, err := s.service.Donate(s.ctx, c.ID.String(), pledge(1_000))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("campaign closing mid-flight leaves no donation behind", func() {
		c := activeCampaign()
		s.mockLedger.EXPECT().Get(gomock.Any(), gomock.Any()).Return(c, nil)
		s.mockLedger.EXPECT().RecordDonation(gomock.Any(), c.ID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "campaign has ended"))

		_, err := s.service.Donate(s.ctx, "school-meals", pledge(1_000))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		stored, err := s.store.List(s.ctx, models.ListFilter{CampaignID: c.ID})
		s.Require().NoError(err)
		s.Empty(stored)
	})

	s.Run("out-of-range amount is a validation error", func() {
		s.mockLedger.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeCampaign(), nil)
		_, err := s.service.Donate(s.ctx, "school-meals", pledge(50))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown campaign passes through not found", func() {
		s.mockLedger.EXPECT().Get(gomock.Any(), "nope").Return(nil, dErrors.New(dErrors.CodeNotFound, "campaign not found"))
		_, err := s.service.Donate(s.ctx, "nope", pledge(1_000))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DonationServiceSuite) TestDonateStoreFailure() {
	mockStore := mocks.NewMockStore(s.ctrl)
	svc := New(mockStore, s.mockLedger)
	c := activeCampaign()
	s.mockLedger.EXPECT().Get(gomock.Any(), gomock.Any()).Return(c, nil)
	s.mockLedger.EXPECT().RecordDonation(gomock.Any(), gomock.Any(), gomock.Any()).Return(c, nil)
	mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := svc.Donate(s.ctx, "school-meals", pledge(1_000))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *DonationServiceSuite) TestGetVisibility() {
	donor := id.UserID(uuid.New())
	d := &models.Donation{ID: id.DonationID(uuid.New()), CampaignID: id.CampaignID(uuid.New()), DonorID: donor, CreatedAt: s.now}
	s.Require().NoError(s.store.Create(s.ctx, d))

	own := requestcontext.WithPrincipal(s.ctx, donor, id.SessionID(uuid.New()), id.RoleDonor)
	got, err := s.service.Get(own, d.ID)
	s.Require().NoError(err)
	s.Equal(d.ID, got.ID)

	stranger := requestcontext.WithPrincipal(s.ctx, id.UserID(uuid.New()), id.SessionID(uuid.New()), id.RoleDonor)
	_, err = s.service.Get(stranger, d.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	admin := requestcontext.WithPrincipal(s.ctx, id.UserID(uuid.New()), id.SessionID(uuid.New()), id.RoleAdmin)
	_, err = s.service.Get(admin, d.ID)
	s.NoError(err)
}

func (s *DonationServiceSuite) TestListForDonorRequiresIdentity() {
	_, err := s.service.ListForDonor(s.ctx, id.UserID{}, 10)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	campaignmodels "civicfund/internal/campaign/models"
	"civicfund/internal/donation/handler/mocks"
	"civicfund/internal/donation/models"
	"civicfund/internal/donation/service"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/testutil"
)

type DonationHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
}

func TestDonationHandlerSuite(t *testing.T) {
	suite.Run(t, new(DonationHandlerSuite))
}

func (s *DonationHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	h := New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterDonor(r)
	s.router = r
}

func (s *DonationHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validForm() map[string]any {
	return map[string]any{
		"amount_cents": 2_500,
		"donor_name":   "Priya Shah",
		"email":        "Priya@Example.com ",
		"message":      "Keep going!",
	}
}

func receiptFor(p models.Pledge) *service.Receipt {
	c := &campaignmodels.Campaign{ID: id.CampaignID(uuid.New()), Title: "Clinic Fund", RaisedCents: p.AmountCents, DonorCount: 1}
	return &service.Receipt{
		Donation: &models.Donation{
			ID:          id.DonationID(uuid.New()),
			CampaignID:  c.ID,
			DonorID:     p.DonorID,
			DonorName:   p.DonorName,
			AmountCents: p.AmountCents,
			Currency:    models.CurrencyUSD,
			Frequency:   p.Frequency,
			CreatedAt:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		Campaign: c,
	}
}

func (s *DonationHandlerSuite) TestHandleDonate() {
	s.Run("guest donation defaults to one-time", func() {
		s.mockService.EXPECT().Donate(gomock.Any(), "clinic-fund", gomock.Any()).DoAndReturn(
			func(_ any, _ string, p models.Pledge) (*service.Receipt, error) {
				s.True(p.DonorID.IsNil())
				s.Equal(models.FrequencyOneTime, p.Frequency)
				s.Equal("priya@example.com", p.Email)
				return receiptFor(p), nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/campaigns/clinic-fund/donations", validForm())
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[ReceiptResponse](s.T(), rr)
		s.Equal(int64(2_500), resp.Campaign.RaisedCents)
	})

	s.Run("signed-in donor is attached", func() {
		req, userID := testutil.AsNewPrincipal(
			testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/campaigns/clinic-fund/donations", validForm()), id.RoleDonor)
		s.mockService.EXPECT().Donate(gomock.Any(), "clinic-fund", gomock.Any()).DoAndReturn(
			func(_ any, _ string, p models.Pledge) (*service.Receipt, error) {
				s.Equal(userID, p.DonorID)
				return receiptFor(p), nil
			})

		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusCreated, rr.Code)
	})

	s.Run("form bounds", func() {
		form := validForm()
		form["amount_cents"] = 99
		form["frequency"] = "weekly"
		form["email"] = "not-an-email"
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/campaigns/clinic-fund/donations", form))

		resp := testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Contains(resp.Fields, "amount_cents")
		s.Contains(resp.Fields, "frequency")
		s.Contains(resp.Fields, "email")
	})

	s.Run("inactive campaign", func() {
		s.mockService.EXPECT().Donate(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "campaign is not accepting donations"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/campaigns/closed/donations", validForm()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}

func (s *DonationHandlerSuite) TestHandleSupportersHidesAnonymousNames() {
	s.mockService.EXPECT().ListSupporters(gomock.Any(), "clinic-fund").Return([]*models.Donation{
		{DonorName: "Visible Person", AmountCents: 1_000},
		{DonorName: "Hidden Person", AmountCents: 2_000, Anonymous: true},
	}, nil)

	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/api/campaigns/clinic-fund/donations", nil))
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[struct {
		Supporters []SupporterResponse `json:"supporters"`
	}](s.T(), rr)
	s.Require().Len(resp.Supporters, 2)
	s.Equal("Visible Person", resp.Supporters[0].Name)
	s.Equal(models.AnonymousName, resp.Supporters[1].Name)
	s.NotContains(rr.Body.String(), "Hidden Person")
}

func (s *DonationHandlerSuite) TestHandleListMine() {
	req, userID := testutil.AsNewPrincipal(httptest.NewRequest(http.MethodGet, "/api/dashboard/donations?limit=5", nil), id.RoleDonor)
	s.mockService.EXPECT().ListForDonor(gomock.Any(), userID, 5).Return(nil, nil)
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)

	bad := httptest.NewRequest(http.MethodGet, "/api/dashboard/donations?limit=-1", nil)
	testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, bad), http.StatusBadRequest, "bad_request")
}

func (s *DonationHandlerSuite) TestHandleOptions() {
	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/api/donations/options", nil))
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[OptionsResponse](s.T(), rr)
	s.Equal(models.MinAmountCents, resp.MinAmountCents)
	s.Contains(resp.Frequencies, "monthly")
}

func (s *DonationHandlerSuite) TestAnonymousGiftWithoutNameStoresAnonymous() {
	form := validForm()
	delete(form, "donor_name")
	form["anonymous"] = true
	form["email"] = "jamie.ortiz@example.com"

	s.mockService.EXPECT().Donate(gomock.Any(), "clinic-fund", gomock.Any()).DoAndReturn(
		func(_ any, _ string, p models.Pledge) (*service.Receipt, error) {
			s.Equal(models.AnonymousName, p.DonorName)
			s.True(p.Anonymous)
			return receiptFor(p), nil
		})

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/campaigns/clinic-fund/donations", form))
	s.Equal(http.StatusCreated, rr.Code)
	s.NotContains(rr.Body.String(), "Jamie Ortiz")
}

package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civicfund/internal/dashboard/handler/mocks"
	"civicfund/internal/dashboard/models"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/testutil"
)

type DashboardHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
}

func TestDashboardHandlerSuite(t *testing.T) {
	suite.Run(t, new(DashboardHandlerSuite))
}

func (s *DashboardHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	h := New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterDonor(r)
	h.RegisterAdmin(r)
	s.router = r
}

func (s *DashboardHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DashboardHandlerSuite) TestHandleSummary() {
	s.Run("returns the donor's totals", func() {
		req, userID := testutil.AsNewPrincipal(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), id.RoleDonor)
		s.mockService.EXPECT().DonorSummary(gomock.Any(), userID).Return(&models.DonorSummary{
			TotalGivenCents: 4_200,
			DonationCount:   3,
		}, nil)

		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[models.DonorSummary](s.T(), rr)
		s.Equal(int64(4_200), body.TotalGivenCents)
		s.Equal(3, body.DonationCount)
	})

	s.Run("service error is mapped", func() {
		req, _ := testutil.AsNewPrincipal(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), id.RoleDonor)
		s.mockService.EXPECT().DonorSummary(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "boom"))

		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusInternalServerError, "internal_error")
	})
}

func (s *DashboardHandlerSuite) TestHandleSupported() {
	req, userID := testutil.AsNewPrincipal(httptest.NewRequest(http.MethodGet, "/api/dashboard/supported", nil), id.RoleDonor)
	s.mockService.EXPECT().DonorSummary(gomock.Any(), userID).Return(&models.DonorSummary{}, nil)

	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[SupportedResponse](s.T(), rr)
	s.NotNil(body.Campaigns)
	s.Zero(body.Total)
}

func (s *DashboardHandlerSuite) TestHandleOverview() {
	s.mockService.EXPECT().Overview(gomock.Any()).Return(&models.Overview{
		UsersByRole:    map[string]int{"donor": 2},
		PendingReviews: 4,
	}, nil)

	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/admin/overview", nil))
	s.Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[models.Overview](s.T(), rr)
	s.Equal(4, body.PendingReviews)
	s.Equal(2, body.UsersByRole["donor"])
}

func (s *DashboardHandlerSuite) TestHandleAnalytics() {
	s.mockService.EXPECT().Analytics(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeTimeout, "slow"))

	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusGatewayTimeout, "timeout")
}

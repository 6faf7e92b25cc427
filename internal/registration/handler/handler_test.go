package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civicfund/internal/registration/handler/mocks"
	"civicfund/internal/registration/models"
	"civicfund/internal/registration/service"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/testutil"
)

type RegistrationHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	h := New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	s.router = r
}

func (s *RegistrationHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func organizerForm() map[string]any {
	return map[string]any{
		"full_name":    "Morgan Diaz",
		"email":        " Morgan@Example.org",
		"role":         "Organizer",
		"organization": "Neighbors United",
		"password":     "s3cret-pass",
		"documents": []map[string]any{
			{"kind": "government_id", "file_name": "id.pdf", "content_type": "application/pdf", "size_bytes": 2048},
		},
	}
}

func pending(app service.Application) *models.Registration {
	return &models.Registration{
		ID:          id.RegistrationID(uuid.New()),
		FullName:    app.FullName,
		Email:       app.Email,
		Role:        app.Role,
		Status:      models.StatusPending,
		SubmittedAt: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC),
	}
}

func (s *RegistrationHandlerSuite) TestHandleSubmit() {
	s.Run("organizer application is accepted", func() {
		s.mockService.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, app service.Application) (*models.Registration, error) {
				s.Equal("morgan@example.org", app.Email)
				s.Equal(id.RoleOrganizer, app.Role)
				s.Equal("s3cret-pass", app.Password)
				s.Require().Len(app.Documents, 1)
				s.Equal(models.DocumentGovernmentID, app.Documents[0].Kind)
				return pending(app), nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/registrations", organizerForm()))
		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[SubmittedResponse](s.T(), rr)
		s.Equal("pending", resp.Status)
		s.NotContains(rr.Body.String(), "s3cret-pass")
	})

	s.Run("role defaults to donor", func() {
		form := map[string]any{"full_name": "Sam Roe", "email": "sam@example.com", "password": "password1"}
		s.mockService.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, app service.Application) (*models.Registration, error) {
				s.Equal(id.RoleDonor, app.Role)
				s.Empty(app.Documents)
				return pending(app), nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/registrations", form))
		s.Equal(http.StatusCreated, rr.Code)
	})

	s.Run("empty form reports every field", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/registrations", map[string]any{}))
		resp := testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Contains(resp.Fields, "full_name")
		s.Contains(resp.Fields, "email")
		s.Contains(resp.Fields, "password")
	})

	s.Run("admin role and oversized documents are rejected", func() {
		form := organizerForm()
		form["role"] = "admin"
		form["documents"] = []map[string]any{
			{"kind": "selfie", "file_name": "me.gif", "content_type": "image/gif", "size_bytes": 11 << 20},
		}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/registrations", form))
		resp := testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Contains(resp.Fields, "role")
		s.Contains(resp.Fields, "documents[0].kind")
		s.Contains(resp.Fields, "documents[0].content_type")
		s.Contains(resp.Fields, "documents[0].size_bytes")
	})

	s.Run("organizer needs documents and an organization", func() {
		form := organizerForm()
		delete(form, "documents")
		delete(form, "organization")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/registrations", form))
		resp := testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Contains(resp.Fields, "documents")
		s.Contains(resp.Fields, "organization")
	})

	s.Run("too many documents", func() {
		form := organizerForm()
		docs := make([]map[string]any, 6)
		for i := range docs {
			docs[i] = map[string]any{"kind": "other", "file_name": "f.png", "content_type": "image/png", "size_bytes": 10}
		}
		form["documents"] = docs
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/registrations", form))
		resp := testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Contains(resp.Fields, "documents")
	})

	s.Run("duplicate pending application", func() {
		s.mockService.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "an application for this email is already awaiting review"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/registrations", organizerForm()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}

func (s *RegistrationHandlerSuite) TestHandleList() {
	s.mockService.EXPECT().List(gomock.Any(), models.ListFilter{
		Statuses: []models.Status{models.StatusPending, models.StatusRejected},
		Limit:    20,
	}).Return([]*models.Registration{pending(service.Application{FullName: "A", Role: id.RoleDonor})}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/registrations?status=pending,rejected&limit=20", nil)
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[RegistrationListResponse](s.T(), rr)
	s.Equal(1, resp.Total)
	s.NotContains(rr.Body.String(), "password")

	bad := httptest.NewRequest(http.MethodGet, "/admin/registrations?status=archived", nil)
	testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, bad), http.StatusBadRequest, "bad_request")
}

func (s *RegistrationHandlerSuite) TestHandleReview() {
	registrationID := id.RegistrationID(uuid.New())

	s.Run("reject passes the reason", func() {
		s.mockService.EXPECT().Review(gomock.Any(), registrationID, models.ActionReject, "missing charter").
			Return(&models.Registration{ID: registrationID, Status: models.StatusRejected, ReviewNote: "missing charter"}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/registrations/"+registrationID.String()+"/reject",
			map[string]string{"reason": "missing charter"})
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[RegistrationResponse](s.T(), rr)
		s.Equal("rejected", resp.Status)
	})

	s.Run("approve without a body", func() {
		userID := id.UserID(uuid.New())
		s.mockService.EXPECT().Review(gomock.Any(), registrationID, models.ActionApprove, "").
			Return(&models.Registration{ID: registrationID, Status: models.StatusApproved, UserID: userID}, nil)

		req := httptest.NewRequest(http.MethodPost, "/admin/registrations/"+registrationID.String()+"/approve", nil)
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
		s.True(strings.Contains(rr.Body.String(), userID.String()))
	})

	s.Run("unknown action", func() {
		req := httptest.NewRequest(http.MethodPost, "/admin/registrations/"+registrationID.String()+"/archive", nil)
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusBadRequest, "bad_request")
	})

	s.Run("malformed id", func() {
		req := httptest.NewRequest(http.MethodPost, "/admin/registrations/nope/approve", nil)
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusBadRequest, "invalid_input")
	})

	s.Run("already reviewed", func() {
		s.mockService.EXPECT().Review(gomock.Any(), registrationID, models.ActionApprove, "").
			Return(nil, dErrors.New(dErrors.CodeConflict, "registration has already been approved"))
		req := httptest.NewRequest(http.MethodPost, "/admin/registrations/"+registrationID.String()+"/approve", nil)
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusConflict, "conflict")
	})
}

func (s *RegistrationHandlerSuite) TestHandleOptions() {
	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/api/registrations/options", nil))
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[OptionsResponse](s.T(), rr)
	s.Equal(5, resp.MaxDocuments)
	s.Contains(resp.ContentTypes, "application/pdf")
}

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

	"civicfund/internal/auth/handler/mocks"
	"civicfund/internal/auth/models"
	"civicfund/internal/auth/service"
	otpmodels "civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	authmw "civicfund/pkg/platform/middleware/auth"
	"civicfund/pkg/requestcontext"
	"civicfund/pkg/testutil"
)

type AuthHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
	now         time.Time
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.now = time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	h := New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)), WithSecureCookie(true))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithTime(req.Context(), s.now)))
		})
	})
	h.Register(r)
	h.RegisterAuthenticated(r)
	h.RegisterAdmin(r)
	s.router = r
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) challenge() *otpmodels.Challenge {
	return otpmodels.NewChallenge(id.ChallengeID(uuid.New()), id.UserID(uuid.New()), "hash",
		otpmodels.Policy{TTL: 5 * time.Minute, ResendCooldown: 30 * time.Second, MaxAttempts: 5}, s.now)
}

func sampleUser() *models.User {
	return &models.User{
		ID:       id.UserID(uuid.New()),
		Email:    "jordan@example.com",
		FullName: "Jordan Lee",
		Role:     id.RoleDonor,
		Status:   models.StatusActive,
	}
}

func (s *AuthHandlerSuite) TestHandleLogin() {
	s.Run("returns challenge countdowns and demo hint", func() {
		c := s.challenge()
		s.mockService.EXPECT().Login(gomock.Any(), "jordan@example.com", "correct horse").
			Return(&service.LoginResult{Challenge: c, DemoHint: "123456"}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
			map[string]string{"email": " Jordan@Example.com ", "password": "correct horse"})
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[LoginResponse](s.T(), rr)
		s.Equal(c.ID.String(), resp.ChallengeID)
		s.Equal(300, resp.ExpiresIn)
		s.Equal(30, resp.ResendIn)
		s.Equal(5, resp.AttemptsRemaining)
		s.Equal("123456", resp.DemoHint)
	})

	s.Run("form validation", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
			map[string]string{"email": "not-an-email"})
		rr := testutil.DoRequest(s.router, req)
		resp := testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Contains(resp.Fields, "email")
		s.Contains(resp.Fields, "password")
	})

	s.Run("bad credentials", func() {
		s.mockService.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
			map[string]string{"email": "jordan@example.com", "password": "nope"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *AuthHandlerSuite) TestHandleVerify() {
	challengeID := id.ChallengeID(uuid.New())

	s.Run("six digit inputs assemble in order and set the cookie", func() {
		u := sampleUser()
		s.mockService.EXPECT().VerifyOTP(gomock.Any(), challengeID, "123456").Return(&service.TokenResult{
			AccessToken: "signed.jwt",
			ExpiresAt:   s.now.Add(time.Hour),
			SessionID:   id.SessionID(uuid.New()),
			User:        u,
		}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/verify", map[string]any{
			"challenge_id": challengeID.String(),
			"digits":       []string{"1", "2", "3", "4", "5", "6"},
		})
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[TokenResponse](s.T(), rr)
		s.Equal("signed.jwt", resp.AccessToken)
		s.Equal("Bearer", resp.TokenType)
		s.Equal(3600, resp.ExpiresIn)
		s.Equal(u.Email, resp.User.Email)

		cookies := rr.Result().Cookies()
		s.Require().Len(cookies, 1)
		s.Equal(authmw.SessionCookieName, cookies[0].Name)
		s.Equal("signed.jwt", cookies[0].Value)
		s.True(cookies[0].HttpOnly)
		s.True(cookies[0].Secure)
	})

	s.Run("malformed code never reaches the service", func() {
		for _, body := range []map[string]any{
			{"challenge_id": challengeID.String(), "code": "12345"},
			{"challenge_id": challengeID.String(), "digits": []string{"1", "2", "3"}},
			{"challenge_id": challengeID.String(), "code": "12a456"},
		} {
			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/verify", body))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
		}
	})

	s.Run("both code and digits", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/verify", map[string]any{
			"challenge_id": challengeID.String(), "code": "123456", "digits": []string{"1"},
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
	})

	s.Run("wrong code keeps the user-facing message", func() {
		s.mockService.EXPECT().VerifyOTP(gomock.Any(), challengeID, "000000").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid verification code"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/verify", map[string]any{
			"challenge_id": challengeID.String(), "code": "000000",
		}))
		resp := testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
		s.Equal("Invalid verification code", resp.ErrorDescription)
	})

	s.Run("locked", func() {
		s.mockService.EXPECT().VerifyOTP(gomock.Any(), challengeID, "999999").
			Return(nil, dErrors.New(dErrors.CodeForbidden, "too many attempts, please sign in again"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/verify", map[string]any{
			"challenge_id": challengeID.String(), "code": "999999",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *AuthHandlerSuite) TestHandleResend() {
	s.Run("cooldown", func() {
		challengeID := id.ChallengeID(uuid.New())
		s.mockService.EXPECT().ResendOTP(gomock.Any(), challengeID).
			Return(nil, dErrors.New(dErrors.CodeTooManyRequests, "a new code can be requested in 12 seconds"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/resend",
			map[string]string{"challenge_id": challengeID.String()}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "too_many_requests")
	})

	s.Run("rotated", func() {
		c := s.challenge()
		s.mockService.EXPECT().ResendOTP(gomock.Any(), c.ID).Return(c, nil)
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/resend",
			map[string]string{"challenge_id": c.ID.String()}))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("bad challenge id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/otp/resend",
			map[string]string{"challenge_id": "nope"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *AuthHandlerSuite) TestHandleChallengeStatus() {
	c := s.challenge()
	c.Attempts = 2
	s.mockService.EXPECT().ChallengeStatus(gomock.Any(), c.ID).Return(c, nil)

	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/auth/otp/"+c.ID.String(), nil))
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[ChallengeResponse](s.T(), rr)
	s.Equal(3, resp.AttemptsRemaining)
	s.False(resp.Locked)
}

func (s *AuthHandlerSuite) TestHandleMeAndLogout() {
	u := sampleUser()
	s.mockService.EXPECT().Me(gomock.Any()).Return(u, nil)
	req, _ := testutil.AsNewPrincipal(httptest.NewRequest(http.MethodGet, "/auth/me", nil), id.RoleDonor)
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(u.ID.String(), testutil.UnmarshalResponse[UserResponse](s.T(), rr).ID)

	s.mockService.EXPECT().Logout(gomock.Any()).Return(nil)
	req, _ = testutil.AsNewPrincipal(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), id.RoleDonor)
	rr = testutil.DoRequest(s.router, req)
	s.Equal(http.StatusNoContent, rr.Code)
	cookies := rr.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(-1, cookies[0].MaxAge)
}

func (s *AuthHandlerSuite) TestHandleListUsers() {
	s.Run("filters", func() {
		s.mockService.EXPECT().ListUsers(gomock.Any(), models.ListFilter{Role: id.RoleOrganizer, Status: models.StatusSuspended, Query: "lee", Limit: 10}).
			Return([]*models.User{sampleUser()}, nil)
		rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/admin/users?role=organizer&status=suspended&q=lee&limit=10", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal(1, testutil.UnmarshalResponse[UserListResponse](s.T(), rr).Total)
	})

	s.Run("unknown role", func() {
		rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/admin/users?role=root", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *AuthHandlerSuite) TestHandleReviewUser() {
	userID := id.UserID(uuid.New())

	s.Run("suspend with reason", func() {
		u := sampleUser()
		u.Status = models.StatusSuspended
		s.mockService.EXPECT().ReviewUser(gomock.Any(), userID, models.ActionSuspend, "fraud report").Return(u, nil)
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/admin/users/"+userID.String()+"/suspend", map[string]string{"reason": " fraud report "}))
		s.Equal(http.StatusOK, rr.Code)
		s.Equal("suspended", testutil.UnmarshalResponse[UserResponse](s.T(), rr).Status)
	})

	s.Run("unknown action", func() {
		rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodPost, "/admin/users/"+userID.String()+"/promote", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid transition", func() {
		s.mockService.EXPECT().ReviewUser(gomock.Any(), userID, models.ActionReactivate, "").
			Return(nil, dErrors.New(dErrors.CodeConflict, "cannot reactivate a user that is active"))
		rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodPost, "/admin/users/"+userID.String()+"/reactivate", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}

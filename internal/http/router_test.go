package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	ratelimitmw "civicfund/internal/ratelimit/middleware"
	ratelimitmodels "civicfund/internal/ratelimit/models"
	authmw "civicfund/pkg/platform/middleware/auth"
)

type stubValidator map[string]*authmw.JWTClaims

func (v stubValidator) ValidateToken(_ context.Context, token string) (*authmw.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, errors.New("unknown token")
}

type stubLimiter struct {
	deny    ratelimitmodels.Class
	checked []ratelimitmodels.Class
}

func (l *stubLimiter) Check(_ context.Context, class ratelimitmodels.Class, _ string) (*ratelimitmodels.Result, error) {
	l.checked = append(l.checked, class)
	if class == l.deny {
		return &ratelimitmodels.Result{Allowed: false, Limit: 1, RetryAfter: 30, ResetAt: time.Now().Add(30 * time.Second)}, nil
	}
	return &ratelimitmodels.Result{Allowed: true, Limit: 1, Remaining: 1, ResetAt: time.Now().Add(time.Minute)}, nil
}

type okRoutes struct{}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func (okRoutes) Register(r chi.Router) {
	r.Get("/api/campaigns", ok)
	r.Post("/auth/login", ok)
	r.Get("/auth/login", ok)
	r.Post("/api/campaigns/{ref}/donations", ok)
}
func (okRoutes) RegisterAuthenticated(r chi.Router) { r.Get("/auth/me", ok) }
func (okRoutes) RegisterDonor(r chi.Router)         { r.Get("/api/dashboard", ok) }
func (okRoutes) RegisterOrganizer(r chi.Router)     { r.Post("/api/campaigns", ok) }
func (okRoutes) RegisterAdmin(r chi.Router)         { r.Get("/admin/overview", ok) }

type RouterSuite struct {
	suite.Suite
	limiter *stubLimiter
	failing bool
	router  http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func claims(role string) *authmw.JWTClaims {
	return &authmw.JWTClaims{UserID: uuid.NewString(), SessionID: uuid.NewString(), Role: role}
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.limiter = &stubLimiter{}
	s.failing = false
	routes := okRoutes{}
	s.router = NewRouter(Config{
		Logger: logger,
		Validator: stubValidator{
			"donor":     claims("donor"),
			"organizer": claims("organizer"),
			"admin":     claims("admin"),
		},
		RateLimit:      ratelimitmw.New(s.limiter, logger),
		RequestTimeout: time.Second,
		Health: map[string]HealthCheck{
			"database": func(context.Context) error {
				if s.failing {
					return errors.New("connection refused")
				}
				return nil
			},
		},
		Public:        []PublicRoutes{routes},
		Authenticated: []AuthenticatedRoutes{routes},
		Donor:         []DonorRoutes{routes},
		Organizer:     []OrganizerRoutes{routes},
		Admin:         []AdminRoutes{routes},
	})
}

func (s *RouterSuite) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestHealth() {
	s.Run("all checks pass", func() {
		rec := s.do(http.MethodGet, "/health", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"status":"ok"`)
	})

	s.Run("failing check reports unavailable", func() {
		s.failing = true
		defer func() { s.failing = false }()
		rec := s.do(http.MethodGet, "/health", "")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.Contains(rec.Body.String(), "connection refused")
	})
}

func (s *RouterSuite) TestAccessGroups() {
	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"guest browses campaigns", http.MethodGet, "/api/campaigns", "", http.StatusOK},
		{"invalid token still browses", http.MethodGet, "/api/campaigns", "bogus", http.StatusOK},
		{"guest cannot read profile", http.MethodGet, "/auth/me", "", http.StatusUnauthorized},
		{"donor reads profile", http.MethodGet, "/auth/me", "donor", http.StatusOK},
		{"donor dashboard", http.MethodGet, "/api/dashboard", "donor", http.StatusOK},
		{"organizer satisfies donor", http.MethodGet, "/api/dashboard", "organizer", http.StatusOK},
		{"donor cannot create campaign", http.MethodPost, "/api/campaigns", "donor", http.StatusForbidden},
		{"organizer creates campaign", http.MethodPost, "/api/campaigns", "organizer", http.StatusOK},
		{"admin creates campaign", http.MethodPost, "/api/campaigns", "admin", http.StatusOK},
		{"guest admin overview", http.MethodGet, "/admin/overview", "", http.StatusUnauthorized},
		{"organizer admin overview", http.MethodGet, "/admin/overview", "organizer", http.StatusForbidden},
		{"admin overview", http.MethodGet, "/admin/overview", "admin", http.StatusOK},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(tc.method, tc.path, tc.token)
			s.Equal(tc.want, rec.Code)
		})
	}
}

func (s *RouterSuite) TestFormRateLimit() {
	s.Run("login submission denied", func() {
		s.limiter.deny = ratelimitmodels.ClassLogin
		rec := s.do(http.MethodPost, "/auth/login", "")
		s.Equal(http.StatusTooManyRequests, rec.Code)
		s.Equal("30", rec.Header().Get("Retry-After"))
	})

	s.Run("login page is not limited", func() {
		s.limiter.checked = nil
		rec := s.do(http.MethodGet, "/auth/login", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Empty(s.limiter.checked)
	})

	s.Run("donation uses its own class", func() {
		s.limiter.checked = nil
		rec := s.do(http.MethodPost, "/api/campaigns/clean-water/donations", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal([]ratelimitmodels.Class{ratelimitmodels.ClassDonation}, s.limiter.checked)
	})
}

func TestFormClass(t *testing.T) {
	cases := []struct {
		method string
		path   string
		class  ratelimitmodels.Class
		ok     bool
	}{
		{http.MethodPost, "/auth/login", ratelimitmodels.ClassLogin, true},
		{http.MethodPost, "/auth/login/", ratelimitmodels.ClassLogin, true},
		{http.MethodPost, "/auth/otp/verify", ratelimitmodels.ClassOTP, true},
		{http.MethodPost, "/auth/otp/resend", ratelimitmodels.ClassOTP, true},
		{http.MethodPost, "/api/registrations", ratelimitmodels.ClassRegister, true},
		{http.MethodPost, "/api/campaigns/abc/donations", ratelimitmodels.ClassDonation, true},
		{http.MethodGet, "/api/campaigns/abc/donations", "", false},
		{http.MethodPost, "/api/campaigns", "", false},
		{http.MethodGet, "/auth/login", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			class, ok := formClass(req)
			require.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.class, class)
		})
	}
}

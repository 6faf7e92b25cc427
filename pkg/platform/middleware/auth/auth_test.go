package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	id "civicfund/pkg/domain"
	"civicfund/pkg/requestcontext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(context.Context, string) (*JWTClaims, error) {
	return v.claims, v.err
}

type AuthMiddlewareSuite struct {
	suite.Suite
	logger    *slog.Logger
	userID    uuid.UUID
	sessionID uuid.UUID
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.DiscardHandler)
	s.userID = uuid.New()
	s.sessionID = uuid.New()
}

func (s *AuthMiddlewareSuite) validClaims(role string) stubValidator {
	return stubValidator{claims: &JWTClaims{UserID: s.userID.String(), SessionID: s.sessionID.String(), Role: role}}
}

func (s *AuthMiddlewareSuite) capture(seen *id.UserID, role *id.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = requestcontext.UserID(r.Context())
		*role = requestcontext.Role(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func (s *AuthMiddlewareSuite) TestRequireAuth() {
	s.Run("missing header is unauthorized", func() {
		var seen id.UserID
		var role id.Role
		rr := httptest.NewRecorder()
		RequireAuth(s.validClaims("donor"), s.logger)(s.capture(&seen, &role)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		s.Equal(http.StatusUnauthorized, rr.Code)
		s.Contains(rr.Body.String(), "Missing or invalid Authorization header")
	})

	s.Run("invalid token is unauthorized", func() {
		var seen id.UserID
		var role id.Role
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{err: errors.New("expired")}, s.logger)(s.capture(&seen, &role)).ServeHTTP(rr, req)
		s.Equal(http.StatusUnauthorized, rr.Code)
		s.Contains(rr.Body.String(), "Invalid or expired token")
	})

	s.Run("valid bearer token injects the principal", func() {
		var seen id.UserID
		var role id.Role
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		RequireAuth(s.validClaims("organizer"), s.logger)(s.capture(&seen, &role)).ServeHTTP(rr, req)
		s.Equal(http.StatusOK, rr.Code)
		s.Equal(s.userID, uuid.UUID(seen))
		s.Equal(id.RoleOrganizer, role)
	})

	s.Run("session cookie is accepted", func() {
		var seen id.UserID
		var role id.Role
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
		rr := httptest.NewRecorder()
		RequireAuth(s.validClaims("donor"), s.logger)(s.capture(&seen, &role)).ServeHTTP(rr, req)
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("unknown role in claims is unauthorized", func() {
		var seen id.UserID
		var role id.Role
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		RequireAuth(s.validClaims("superuser"), s.logger)(s.capture(&seen, &role)).ServeHTTP(rr, req)
		s.Equal(http.StatusUnauthorized, rr.Code)
	})
}

func (s *AuthMiddlewareSuite) TestOptionalAuth() {
	s.Run("anonymous passes through", func() {
		var seen id.UserID
		var role id.Role
		rr := httptest.NewRecorder()
		OptionalAuth(s.validClaims("donor"), s.logger)(s.capture(&seen, &role)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/campaigns/x/donations", nil))
		s.Equal(http.StatusOK, rr.Code)
		s.True(seen.IsNil())
	})

	s.Run("invalid token degrades to anonymous", func() {
		var seen id.UserID
		var role id.Role
		req := httptest.NewRequest(http.MethodPost, "/api/campaigns/x/donations", nil)
		req.Header.Set("Authorization", "Bearer stale")
		rr := httptest.NewRecorder()
		OptionalAuth(stubValidator{err: errors.New("expired")}, s.logger)(s.capture(&seen, &role)).ServeHTTP(rr, req)
		s.Equal(http.StatusOK, rr.Code)
		s.True(seen.IsNil())
	})

	s.Run("valid token injects the principal", func() {
		var seen id.UserID
		var role id.Role
		req := httptest.NewRequest(http.MethodPost, "/api/campaigns/x/donations", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		OptionalAuth(s.validClaims("donor"), s.logger)(s.capture(&seen, &role)).ServeHTTP(rr, req)
		s.Equal(s.userID, uuid.UUID(seen))
	})
}

func (s *AuthMiddlewareSuite) TestRequireRole() {
	cases := []struct {
		role     id.Role
		required id.Role
		status   int
	}{
		{id.RoleDonor, id.RoleDonor, http.StatusOK},
		{id.RoleDonor, id.RoleOrganizer, http.StatusForbidden},
		{id.RoleOrganizer, id.RoleDonor, http.StatusOK},
		{id.RoleAdmin, id.RoleOrganizer, http.StatusOK},
		{"", id.RoleDonor, http.StatusForbidden},
	}
	for _, tc := range cases {
		s.Run(string(tc.role)+"->"+string(tc.required), func() {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tc.role != "" {
				req = req.WithContext(requestcontext.WithPrincipal(req.Context(), id.UserID(s.userID), id.SessionID(s.sessionID), tc.role))
			}
			rr := httptest.NewRecorder()
			RequireRole(tc.required, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rr, req)
			s.Equal(tc.status, rr.Code)
		})
	}
}

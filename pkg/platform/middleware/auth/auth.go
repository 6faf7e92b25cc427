package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "civicfund/pkg/domain"
	request "civicfund/pkg/platform/middleware/request"
	"civicfund/pkg/requestcontext"
)

// JWTValidator defines the interface for validating access tokens.
type JWTValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims the validator extracts from an access token.
type JWTClaims struct {
	UserID    string
	SessionID string
	Role      string
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

func bearerToken(r *http.Request) (string, bool) {
	const bearerPrefix = "Bearer "
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if ok && token != "" {
		return token, true
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// SessionCookieName carries the access token for server-rendered pages.
const SessionCookieName = "civicfund_session"

// principal parses validated claims into typed IDs.
func principal(claims *JWTClaims) (id.UserID, id.SessionID, id.Role, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.UserID{}, id.SessionID{}, "", err
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return id.UserID{}, id.SessionID{}, "", err
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return id.UserID{}, id.SessionID{}, "", err
	}
	return userID, sessionID, role, nil
}

// RequireAuth rejects requests without a valid bearer token or session cookie
// and injects the principal into the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			userID, sessionID, role, err := principal(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, userID, sessionID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injects the principal when a valid token is present and
// otherwise lets the request through anonymously. Guest donations use it.
func OptionalAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				logger.DebugContext(r.Context(), "ignoring invalid optional token",
					"error", err,
					"request_id", request.GetRequestID(r.Context()),
				)
				next.ServeHTTP(w, r)
				return
			}
			userID, sessionID, role, err := principal(claims)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestcontext.WithPrincipal(r.Context(), userID, sessionID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after RequireAuth. Admins satisfy every role and
// organizers satisfy donor routes.
func RequireRole(required id.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := requestcontext.Role(ctx)
			if !role.Satisfies(required) {
				logger.WarnContext(ctx, "forbidden - insufficient role",
					"required", required,
					"role", role,
					"user_id", requestcontext.UserID(ctx).String(),
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package admin

import (
	"log/slog"
	"net/http"

	id "civicfund/pkg/domain"
	request "civicfund/pkg/platform/middleware/request"
	"civicfund/pkg/requestcontext"
)

// RequireAdmin gates the review console. It must run after auth.RequireAuth.
// Anonymous requests get 401, authenticated non-admins get 403.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			if userID.IsNil() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"authentication required"}`))
				return
			}
			if requestcontext.Role(ctx) != id.RoleAdmin {
				logger.WarnContext(ctx, "admin access denied",
					"user_id", userID.String(),
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin role required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

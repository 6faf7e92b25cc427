package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	id "civicfund/pkg/domain"
	"civicfund/pkg/requestcontext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireAdmin(slog.New(slog.DiscardHandler))(ok)

	tests := []struct {
		name   string
		role   id.Role
		anon   bool
		status int
	}{
		{name: "anonymous", anon: true, status: http.StatusUnauthorized},
		{name: "donor", role: id.RoleDonor, status: http.StatusForbidden},
		{name: "organizer", role: id.RoleOrganizer, status: http.StatusForbidden},
		{name: "admin", role: id.RoleAdmin, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if !tt.anon {
				ctx := requestcontext.WithPrincipal(req.Context(), id.UserID(uuid.New()), id.SessionID(uuid.New()), tt.role)
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

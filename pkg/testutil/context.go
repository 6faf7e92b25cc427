package testutil

import (
	"net/http"

	id "civicfund/pkg/domain"
	"civicfund/pkg/requestcontext"

	"github.com/google/uuid"
)

// WithPrincipal simulates what the auth middleware does for an authenticated
// request: a user, a fresh session and the given role.
func WithPrincipal(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), userID, id.SessionID(uuid.New()), role)
	return req.WithContext(ctx)
}

// AsNewPrincipal is WithPrincipal with a freshly generated user ID, which is returned.
func AsNewPrincipal(req *http.Request, role id.Role) (*http.Request, id.UserID) {
	userID := id.UserID(uuid.New())
	return WithPrincipal(req, userID, role), userID
}

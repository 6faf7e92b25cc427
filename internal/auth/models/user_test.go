package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newUser(t *testing.T) *User {
	t.Helper()
	u, err := NewUser(id.UserID(uuid.New()), "  Dana@Example.COM ", " Dana Reyes ", "$2a$hash", id.RoleDonor, now)
	require.NoError(t, err)
	return u
}

func TestNewUser(t *testing.T) {
	u := newUser(t)
	assert.Equal(t, "dana@example.com", u.Email)
	assert.Equal(t, "Dana Reyes", u.FullName)
	assert.Equal(t, StatusActive, u.Status)

	cases := map[string]struct {
		email, name, hash string
		role              id.Role
	}{
		"bad email":    {"nope", "Dana", "h", id.RoleDonor},
		"empty name":   {"a@b.co", "  ", "h", id.RoleDonor},
		"missing hash": {"a@b.co", "Dana", "", id.RoleDonor},
		"bad role":     {"a@b.co", "Dana", "h", id.Role("root")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewUser(id.UserID(uuid.New()), tc.email, tc.name, tc.hash, tc.role, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestReviewTransitions(t *testing.T) {
	u := newUser(t)

	require.NoError(t, u.CanReview(ActionSuspend))
	u.ApplyReview(ActionSuspend, now)
	assert.Equal(t, StatusSuspended, u.Status)
	assert.True(t, dErrors.HasCode(u.CanLogin(), dErrors.CodeForbidden))
	assert.Error(t, u.CanReview(ActionSuspend))

	require.NoError(t, u.CanReview(ActionReactivate))
	u.ApplyReview(ActionReactivate, now)
	assert.NoError(t, u.CanLogin())

	require.NoError(t, u.CanReview(ActionDeactivate))
	u.ApplyReview(ActionDeactivate, now)
	for _, a := range []Action{ActionSuspend, ActionReactivate, ActionDeactivate} {
		assert.Error(t, u.CanReview(a), "deactivated is terminal")
	}
	assert.Error(t, u.CanReview(Action("promote")))
}

func TestListFilterMatches(t *testing.T) {
	u := newUser(t)
	assert.True(t, ListFilter{}.Matches(u))
	assert.True(t, ListFilter{Query: "REYES"}.Matches(u))
	assert.True(t, ListFilter{Query: "dana@"}.Matches(u))
	assert.False(t, ListFilter{Role: id.RoleAdmin}.Matches(u))
	assert.False(t, ListFilter{Status: StatusSuspended}.Matches(u))
}

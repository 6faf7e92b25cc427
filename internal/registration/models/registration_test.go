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

var now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func organizerSubmission() Submission {
	return Submission{
		FullName:     " Casey Morgan ",
		Email:        "Casey@Example.org",
		Role:         id.RoleOrganizer,
		Organization: "Neighbors United",
		Documents: []DocumentMeta{{
			Kind: DocumentCharter, FileName: "charter.pdf", ContentType: "application/pdf", SizeBytes: 2048,
		}},
		PasswordHash: "$2a$hash",
	}
}

func TestNewRegistration(t *testing.T) {
	r, err := NewRegistration(id.RegistrationID(uuid.New()), organizerSubmission(), now)
	require.NoError(t, err)
	assert.Equal(t, "casey@example.org", r.Email)
	assert.Equal(t, "Casey Morgan", r.FullName)
	assert.Equal(t, StatusPending, r.Status)
	assert.Len(t, r.Documents, 1)

	t.Run("admin role cannot be requested", func(t *testing.T) {
		sub := organizerSubmission()
		sub.Role = id.RoleAdmin
		_, err := NewRegistration(id.RegistrationID(uuid.New()), sub, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("organizer needs documents", func(t *testing.T) {
		sub := organizerSubmission()
		sub.Documents = nil
		_, err := NewRegistration(id.RegistrationID(uuid.New()), sub, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("donor needs neither", func(t *testing.T) {
		sub := organizerSubmission()
		sub.Role = id.RoleDonor
		sub.Organization = ""
		sub.Documents = nil
		_, err := NewRegistration(id.RegistrationID(uuid.New()), sub, now)
		assert.NoError(t, err)
	})
}

func TestReview(t *testing.T) {
	reviewer := id.UserID(uuid.New())

	t.Run("reject requires a reason", func(t *testing.T) {
		r, err := NewRegistration(id.RegistrationID(uuid.New()), organizerSubmission(), now)
		require.NoError(t, err)
		assert.Error(t, r.CanReview(ActionReject, "  "))
		require.NoError(t, r.CanReview(ActionReject, "documents unreadable"))
		r.ApplyReview(ActionReject, reviewer, id.UserID(uuid.New()), "documents unreadable", now)
		assert.Equal(t, StatusRejected, r.Status)
		assert.True(t, r.UserID.IsNil(), "only approvals link a user")
		assert.Error(t, r.CanReview(ActionApprove, ""), "rejected is terminal")
	})

	t.Run("approve links the user", func(t *testing.T) {
		r, err := NewRegistration(id.RegistrationID(uuid.New()), organizerSubmission(), now)
		require.NoError(t, err)
		userID := id.UserID(uuid.New())
		require.NoError(t, r.CanReview(ActionApprove, ""))
		r.ApplyReview(ActionApprove, reviewer, userID, "", now)
		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, userID, r.UserID)
		assert.Equal(t, reviewer, r.ReviewedBy)
		require.NotNil(t, r.ReviewedAt)
		assert.Error(t, r.CanReview(ActionReject, "late"))
	})

	t.Run("unknown action", func(t *testing.T) {
		r, err := NewRegistration(id.RegistrationID(uuid.New()), organizerSubmission(), now)
		require.NoError(t, err)
		assert.Error(t, r.CanReview(Action("escalate"), ""))
	})
}

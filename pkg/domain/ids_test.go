package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civicfund/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseCampaignID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseDonationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400\u200B-e29b-41d4-a716-446655440000", true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistrationID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	parsers := map[string]func(string) error{
		"user":         func(s string) error { _, err := ParseUserID(s); return err },
		"session":      func(s string) error { _, err := ParseSessionID(s); return err },
		"campaign":     func(s string) error { _, err := ParseCampaignID(s); return err },
		"donation":     func(s string) error { _, err := ParseDonationID(s); return err },
		"registration": func(s string) error { _, err := ParseRegistrationID(s); return err },
		"post":         func(s string) error { _, err := ParsePostID(s); return err },
		"challenge":    func(s string) error { _, err := ParseChallengeID(s); return err },
	}

	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, parse(validUUID))
			for _, input := range []string{"", "invalid", uuid.Nil.String()} {
				require.Error(t, parse(input), "input %q", input)
			}
		})
	}
}

func TestTypedIDsRenderAsPlainUUIDs(t *testing.T) {
	raw := uuid.New()
	text, err := CampaignID(raw).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, raw.String(), string(text))

	var back CampaignID
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, CampaignID(raw), back)
}

func TestRoleSatisfies(t *testing.T) {
	assert.True(t, RoleAdmin.Satisfies(RoleOrganizer))
	assert.True(t, RoleOrganizer.Satisfies(RoleDonor))
	assert.False(t, RoleDonor.Satisfies(RoleOrganizer))
	assert.False(t, RoleOrganizer.Satisfies(RoleAdmin))

	_, err := ParseRole("superuser")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	r, err := ParseRole("organizer")
	require.NoError(t, err)
	assert.Equal(t, RoleOrganizer, r)
}

package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "civicfund/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so the compiler rejects passing a
// CampaignID where a UserID is expected.
type (
	UserID         uuid.UUID
	SessionID      uuid.UUID
	CampaignID     uuid.UUID
	DonationID     uuid.UUID
	RegistrationID uuid.UUID
	PostID         uuid.UUID
	ChallengeID    uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id SessionID) String() string      { return uuid.UUID(id).String() }
func (id CampaignID) String() string     { return uuid.UUID(id).String() }
func (id DonationID) String() string     { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id PostID) String() string         { return uuid.UUID(id).String() }
func (id ChallengeID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id CampaignID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DonationID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PostID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ChallengeID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs render as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id SessionID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id CampaignID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id DonationID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id RegistrationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id PostID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id ChallengeID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SessionID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CampaignID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DonationID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RegistrationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PostID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ChallengeID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }

// maxIDLength bounds input before it reaches the UUID parser. The longest
// accepted form is the 45-byte "urn:uuid:" prefix variant.
const maxIDLength = 45

// parseUUID enforces the shared invariant for every typed ID: a valid,
// non-nil UUID. Returns CodeInvalidInput otherwise.
func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

func ParseCampaignID(s string) (CampaignID, error) {
	u, err := parseUUID(s, "campaign id")
	return CampaignID(u), err
}

func ParseDonationID(s string) (DonationID, error) {
	u, err := parseUUID(s, "donation id")
	return DonationID(u), err
}

func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration id")
	return RegistrationID(u), err
}

func ParsePostID(s string) (PostID, error) {
	u, err := parseUUID(s, "post id")
	return PostID(u), err
}

func ParseChallengeID(s string) (ChallengeID, error) {
	u, err := parseUUID(s, "challenge id")
	return ChallengeID(u), err
}

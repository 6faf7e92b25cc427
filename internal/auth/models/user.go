package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/email"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MaxNameLength     = 100
)

// User is a platform account. Donors self-register through the registration
// flow; organizers and admins are created by approval or fixtures.
//
// Invariants:
//   - Email is normalized (trimmed, lowercase) and unique
//   - PasswordHash is a bcrypt hash, never plaintext
//   - Only active users can log in
type User struct {
	ID           id.UserID  `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	Role         id.Role    `json:"role"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func NewUser(userID id.UserID, emailAddr, fullName, passwordHash string, role id.Role, now time.Time) (*User, error) {
	emailAddr = email.Normalize(emailAddr)
	if !email.IsValid(emailAddr) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a valid email address is required")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" || utf8.RuneCountInString(fullName) > MaxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "full name must be between 1 and 100 characters")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &User{
		ID:           userID,
		Email:        emailAddr,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) IsActive() bool { return u.Status == StatusActive }

// CanLogin rejects suspended and deactivated accounts.
func (u *User) CanLogin() error {
	if u.IsActive() {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "account is "+string(u.Status))
}

func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// CanReview checks whether action is legal from the current status.
// Use with ApplyReview in Execute callbacks.
func (u *User) CanReview(action Action) error {
	target, ok := action.Target()
	if !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown user action")
	}
	if !u.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"cannot "+string(action)+" a user that is "+string(u.Status))
	}
	return nil
}

func (u *User) ApplyReview(action Action, now time.Time) {
	target, _ := action.Target()
	u.Status = target
	u.UpdatedAt = now
}

// ListFilter narrows the admin user table. Zero values match everything.
type ListFilter struct {
	Role   id.Role
	Status Status
	Query  string
	Limit  int
}

func (f ListFilter) Matches(u *User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(u.Email, q) || strings.Contains(strings.ToLower(u.FullName), q)
	}
	return true
}

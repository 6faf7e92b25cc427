package domain

import dErrors "civicfund/pkg/domain-errors"

// Role is a domain value identifying what a user may do on the platform.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

var validRoles = map[Role]bool{
	RoleDonor:     true,
	RoleOrganizer: true,
	RoleAdmin:     true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

// Satisfies reports whether r grants at least the privileges of required.
// Admins satisfy every role; organizers also act as donors.
func (r Role) Satisfies(required Role) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleOrganizer:
		return required == RoleOrganizer || required == RoleDonor
	case RoleDonor:
		return required == RoleDonor
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

package models

import (
	"strings"
	"time"

	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/email"
)

// DocumentKind classifies a supporting document. Only metadata is kept;
// files are never stored.
type DocumentKind string

const (
	DocumentGovernmentID   DocumentKind = "government_id"
	DocumentProofOfAddress DocumentKind = "proof_of_address"
	DocumentCharter        DocumentKind = "organization_charter"
	DocumentOther          DocumentKind = "other"
)

var DocumentKinds = []string{
	string(DocumentGovernmentID),
	string(DocumentProofOfAddress),
	string(DocumentCharter),
	string(DocumentOther),
}

// AllowedContentTypes are the upload types the form accepts.
var AllowedContentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

type DocumentMeta struct {
	Kind        DocumentKind `json:"kind"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
}

// Registration is an application for an account, reviewed by an admin.
//
// Invariants:
//   - Role is donor or organizer; admins are never self-registered
//   - Organizer applications name an organization and carry at least one document
//   - pending -> approved | rejected, both terminal
//   - UserID is set exactly when approved
type Registration struct {
	ID           id.RegistrationID `json:"id"`
	FullName     string            `json:"full_name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone,omitempty"`
	Role         id.Role           `json:"role"`
	Organization string            `json:"organization,omitempty"`
	Address      string            `json:"address,omitempty"`
	Documents    []DocumentMeta    `json:"documents"`
	PasswordHash string            `json:"-"`
	Status       Status            `json:"status"`
	ReviewNote   string            `json:"review_note,omitempty"`
	ReviewedBy   id.UserID         `json:"reviewed_by"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
	UserID       id.UserID         `json:"user_id"`
}

// Submission is a validated application form with the password already hashed.
type Submission struct {
	FullName     string
	Email        string
	Phone        string
	Role         id.Role
	Organization string
	Address      string
	Documents    []DocumentMeta
	PasswordHash string
}

func NewRegistration(registrationID id.RegistrationID, sub Submission, now time.Time) (*Registration, error) {
	if sub.Role != id.RoleDonor && sub.Role != id.RoleOrganizer {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registrations may request the donor or organizer role only")
	}
	addr := email.Normalize(sub.Email)
	if !email.IsValid(addr) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a valid email address is required")
	}
	if strings.TrimSpace(sub.FullName) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "full name is required")
	}
	if sub.PasswordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	org := strings.TrimSpace(sub.Organization)
	if sub.Role == id.RoleOrganizer && (org == "" || len(sub.Documents) == 0) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organizer applications need an organization and at least one document")
	}
	docs := make([]DocumentMeta, len(sub.Documents))
	copy(docs, sub.Documents)
	return &Registration{
		ID:           registrationID,
		FullName:     strings.TrimSpace(sub.FullName),
		Email:        addr,
		Phone:        strings.TrimSpace(sub.Phone),
		Role:         sub.Role,
		Organization: org,
		Address:      strings.TrimSpace(sub.Address),
		Documents:    docs,
		PasswordHash: sub.PasswordHash,
		Status:       StatusPending,
		SubmittedAt:  now,
	}, nil
}

func (r *Registration) IsPending() bool { return r.Status == StatusPending }

// CanReview checks that the registration is still pending and that a
// rejection carries a reason.
func (r *Registration) CanReview(action Action, note string) error {
	if _, ok := action.Target(); !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown registration action")
	}
	if !r.IsPending() {
		return dErrors.New(dErrors.CodeInvariantViolation, "registration has already been "+string(r.Status))
	}
	if action == ActionReject && strings.TrimSpace(note) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "a rejection reason is required")
	}
	return nil
}

// ApplyReview records the decision. userID is the account created on approval.
func (r *Registration) ApplyReview(action Action, reviewer, userID id.UserID, note string, now time.Time) {
	target, _ := action.Target()
	r.Status = target
	r.ReviewedBy = reviewer
	r.ReviewNote = strings.TrimSpace(note)
	r.ReviewedAt = &now
	if action == ActionApprove {
		r.UserID = userID
	}
}

// ListFilter narrows the admin queue. Empty Statuses matches everything.
type ListFilter struct {
	Statuses []Status
	Limit    int
}

func (f ListFilter) Matches(r *Registration) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

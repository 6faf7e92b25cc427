package handler

import (
	"strings"

	otpmodels "civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/email"
	"civicfund/pkg/platform/validation"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
}

func (r *LoginRequest) Validate() error {
	v := validation.New()
	v.Email("email", r.Email)
	v.Required("password", r.Password)
	return v.Err("invalid login")
}

// VerifyRequest carries the code either whole or as the six form inputs.
type VerifyRequest struct {
	ChallengeID string   `json:"challenge_id"`
	Code        string   `json:"code,omitempty"`
	Digits      []string `json:"digits,omitempty"`
}

func (r *VerifyRequest) Normalize() {
	r.ChallengeID = strings.TrimSpace(r.ChallengeID)
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyRequest) Validate() error {
	v := validation.New()
	v.Required("challenge_id", r.ChallengeID)
	v.Check(r.Code != "" || len(r.Digits) > 0, "code", "is required")
	v.Check(r.Code == "" || len(r.Digits) == 0, "code", "send either code or digits, not both")
	return v.Err("invalid verification request")
}

// Parse returns the typed challenge ID and the assembled six-digit code.
func (r *VerifyRequest) Parse() (id.ChallengeID, string, error) {
	challengeID, err := id.ParseChallengeID(r.ChallengeID)
	if err != nil {
		return id.ChallengeID{}, "", err
	}
	parts := r.Digits
	if r.Code != "" {
		parts = []string{r.Code}
	}
	code, err := otpmodels.ParseCode(parts...)
	if err != nil {
		return id.ChallengeID{}, "", err
	}
	return challengeID, code, nil
}

type ResendRequest struct {
	ChallengeID string `json:"challenge_id"`
}

func (r *ResendRequest) Normalize() {
	r.ChallengeID = strings.TrimSpace(r.ChallengeID)
}

func (r *ResendRequest) Validate() error {
	v := validation.New()
	v.Required("challenge_id", r.ChallengeID)
	return v.Err("invalid resend request")
}

// ReviewUserRequest is the optional body of POST /admin/users/{id}/{action}.
type ReviewUserRequest struct {
	Reason string `json:"reason"`
}

package models

import (
	"time"

	dErrors "civicfund/pkg/domain-errors"
)

// Class groups endpoints that share a limit.
type Class string

const (
	// ClassLogin covers POST /auth/login.
	ClassLogin Class = "login"
	// ClassOTP covers the verify and resend steps.
	ClassOTP Class = "otp"
	// ClassDonation covers the donation form.
	ClassDonation Class = "donation"
	// ClassRegister covers registration submissions.
	ClassRegister Class = "register"
)

func (c Class) IsValid() bool {
	switch c {
	case ClassLogin, ClassOTP, ClassDonation, ClassRegister:
		return true
	}
	return false
}

// Limit allows Requests per sliding Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

func (l Limit) Validate() error {
	if l.Requests <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "rate limit requests must be positive")
	}
	if l.Window <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "rate limit window must be positive")
	}
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until a slot frees; set only when denied.
	RetryAfter int
	// Degraded marks results served by the fallback store.
	Degraded bool
}

// Key builds the bucket key for an identifier within a class.
func Key(class Class, identifier string) string {
	return "ratelimit:" + string(class) + ":" + identifier
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below one.
func RetryAfterSeconds(resetAt, now time.Time) int {
	d := resetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

package models

import (
	"errors"
	"time"

	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/sentinel"
)

var (
	ErrCodeMismatch = errors.New("verification code mismatch")
	ErrLocked       = errors.New("verification locked after too many attempts")
)

// Challenge is one pending second-factor step of a login.
type Challenge struct {
	ID                id.ChallengeID `json:"id"`
	UserID            id.UserID      `json:"user_id"`
	CodeHash          string         `json:"code_hash"`
	CreatedAt         time.Time      `json:"created_at"`
	ExpiresAt         time.Time      `json:"expires_at"`
	ResendAvailableAt time.Time      `json:"resend_available_at"`
	Attempts          int            `json:"attempts"`
	MaxAttempts       int            `json:"max_attempts"`
	ConsumedAt        *time.Time     `json:"consumed_at,omitempty"`
}

// Policy holds the clocks and limits applied to new challenges.
type Policy struct {
	TTL            time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

func NewChallenge(challengeID id.ChallengeID, userID id.UserID, codeHash string, p Policy, now time.Time) *Challenge {
	return &Challenge{
		ID:                challengeID,
		UserID:            userID,
		CodeHash:          codeHash,
		CreatedAt:         now,
		ExpiresAt:         now.Add(p.TTL),
		ResendAvailableAt: now.Add(p.ResendCooldown),
		MaxAttempts:       p.MaxAttempts,
	}
}

func (c *Challenge) IsConsumed() bool { return c.ConsumedAt != nil }

func (c *Challenge) IsLocked() bool { return c.Attempts >= c.MaxAttempts }

func (c *Challenge) IsExpired(now time.Time) bool { return !now.Before(c.ExpiresAt) }

// ExpiresIn is the time left on the code, never negative.
func (c *Challenge) ExpiresIn(now time.Time) time.Duration {
	return clampPositive(c.ExpiresAt.Sub(now))
}

// ResendIn is the remaining resend countdown, never negative.
func (c *Challenge) ResendIn(now time.Time) time.Duration {
	return clampPositive(c.ResendAvailableAt.Sub(now))
}

// CheckUsable reports why the challenge can no longer be verified, if it can't.
func (c *Challenge) CheckUsable(now time.Time) error {
	switch {
	case c.IsConsumed():
		return sentinel.ErrAlreadyUsed
	case c.IsLocked():
		return ErrLocked
	case c.IsExpired(now):
		return sentinel.ErrExpired
	}
	return nil
}

// Attempt records one verification try. A mismatch counts against
// MaxAttempts; the try that reaches the limit returns ErrLocked.
func (c *Challenge) Attempt(matched bool, now time.Time) error {
	if err := c.CheckUsable(now); err != nil {
		return err
	}
	if !matched {
		c.Attempts++
		if c.IsLocked() {
			return ErrLocked
		}
		return ErrCodeMismatch
	}
	consumed := now
	c.ConsumedAt = &consumed
	return nil
}

// CanResend enforces the resend countdown. A locked challenge stays locked;
// the user has to sign in again.
func (c *Challenge) CanResend(now time.Time) error {
	if c.IsConsumed() {
		return sentinel.ErrAlreadyUsed
	}
	if c.IsLocked() {
		return ErrLocked
	}
	if now.Before(c.ResendAvailableAt) {
		return sentinel.ErrInvalidState
	}
	return nil
}

// Rotate installs a fresh code: attempts reset and both clocks restart.
func (c *Challenge) Rotate(codeHash string, p Policy, now time.Time) {
	c.CodeHash = codeHash
	c.Attempts = 0
	c.ExpiresAt = now.Add(p.TTL)
	c.ResendAvailableAt = now.Add(p.ResendCooldown)
}

func clampPositive(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

package handler

import (
	"math"
	"time"

	"civicfund/internal/auth/models"
	"civicfund/internal/auth/service"
	otpmodels "civicfund/internal/otp/models"
)

type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// ChallengeResponse drives the verification form and its countdowns.
type ChallengeResponse struct {
	ChallengeID       string `json:"challenge_id"`
	ExpiresIn         int    `json:"expires_in"`
	ResendIn          int    `json:"resend_in"`
	AttemptsRemaining int    `json:"attempts_remaining"`
	Consumed          bool   `json:"consumed,omitempty"`
	Locked            bool   `json:"locked,omitempty"`
}

type LoginResponse struct {
	ChallengeResponse
	DemoHint string `json:"demo_hint,omitempty"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role.String(),
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func FromUsers(users []*models.User) UserListResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = FromUser(u)
	}
	return UserListResponse{Users: out, Total: len(out)}
}

func FromChallenge(c *otpmodels.Challenge, now time.Time) ChallengeResponse {
	remaining := c.MaxAttempts - c.Attempts
	if remaining < 0 {
		remaining = 0
	}
	return ChallengeResponse{
		ChallengeID:       c.ID.String(),
		ExpiresIn:         seconds(c.ExpiresIn(now)),
		ResendIn:          seconds(c.ResendIn(now)),
		AttemptsRemaining: remaining,
		Consumed:          c.IsConsumed(),
		Locked:            c.IsLocked(),
	}
}

func FromLoginResult(r *service.LoginResult, now time.Time) LoginResponse {
	return LoginResponse{
		ChallengeResponse: FromChallenge(r.Challenge, now),
		DemoHint:          r.DemoHint,
	}
}

func FromTokenResult(r *service.TokenResult, now time.Time) TokenResponse {
	return TokenResponse{
		AccessToken: r.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   seconds(r.ExpiresAt.Sub(now)),
		ExpiresAt:   r.ExpiresAt,
		User:        FromUser(r.User),
	}
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

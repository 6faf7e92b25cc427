package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"civicfund/internal/auth/models"
	"civicfund/internal/auth/store/user"
	otpmodels "civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/email"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/requestcontext"
)

const msgBadCredentials = "invalid email or password"

// LoginResult is the first login step: a pending OTP challenge.
type LoginResult struct {
	Challenge *otpmodels.Challenge
	// DemoHint is the code to type, set only in demo mode.
	DemoHint string
}

// TokenResult is a completed login.
type TokenResult struct {
	AccessToken string
	ExpiresAt   time.Time
	SessionID   id.SessionID
	User        *models.User
}

// Login checks the password and starts an OTP challenge.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	u, err := s.users.FindByEmail(ctx, email.Normalize(emailAddr))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			recordSpanError(span, err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		// equalize timing with the wrong-password path
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		s.loginFailed(ctx, "unknown_email", "")
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgBadCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.loginFailed(ctx, "bad_password", u.ID.String())
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgBadCredentials)
	}
	if err := u.CanLogin(); err != nil {
		s.incrementLogin("blocked")
		s.logAudit(ctx, audit.EventLoginFailed, "user_id", u.ID.String(), "reason", "account_"+string(u.Status))
		return nil, err
	}

	challenge, err := s.otp.Issue(ctx, u.ID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", u.ID.String()))
	s.incrementLogin("challenged")
	s.logAudit(ctx, audit.EventLoginChallenge,
		"user_id", u.ID.String(),
		"subject", challenge.ID.String(),
	)

	result := &LoginResult{Challenge: challenge}
	if s.otp.DemoMode() {
		result.DemoHint = otpmodels.DemoCode
	}
	return result, nil
}

// VerifyOTP completes a login and issues an access token for a new session.
func (s *Service) VerifyOTP(ctx context.Context, challengeID id.ChallengeID, code string) (*TokenResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.VerifyOTP", trace.WithAttributes(
		attribute.String("challenge.id", challengeID.String()),
	))
	defer span.End()

	challenge, err := s.otp.Verify(ctx, challengeID, code)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	now := requestcontext.Now(ctx)
	u, err := s.users.Execute(ctx, challenge.UserID,
		func(u *models.User) error { return u.CanLogin() },
		func(u *models.User) { u.RecordLogin(now) },
	)
	if err != nil {
		recordSpanError(span, err)
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		if errors.Is(err, user.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login")
	}

	sessionID := id.SessionID(uuid.New())
	token, err := s.tokens.GenerateAccessToken(u.ID, sessionID, u.Role, s.tokenTTL)
	if err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	if s.metrics != nil {
		s.metrics.IncrementTokensIssued()
	}
	s.logAudit(ctx, audit.EventLoginSucceeded,
		"user_id", u.ID.String(),
		"subject", sessionID.String(),
	)
	return &TokenResult{
		AccessToken: token,
		ExpiresAt:   now.Add(s.tokenTTL),
		SessionID:   sessionID,
		User:        u,
	}, nil
}

func (s *Service) ResendOTP(ctx context.Context, challengeID id.ChallengeID) (*otpmodels.Challenge, error) {
	return s.otp.Resend(ctx, challengeID)
}

func (s *Service) ChallengeStatus(ctx context.Context, challengeID id.ChallengeID) (*otpmodels.Challenge, error) {
	return s.otp.Status(ctx, challengeID)
}

// Me returns the authenticated caller's account.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, err
	}
	if err := u.CanLogin(); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout revokes the caller's session for the remaining token lifetime.
func (s *Service) Logout(ctx context.Context) error {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if s.revocations != nil {
		if err := s.revocations.RevokeSession(ctx, sessionID.String(), s.tokenTTL); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementLogouts()
	}
	s.logAudit(ctx, audit.EventSessionRevoked,
		"user_id", requestcontext.UserID(ctx).String(),
		"subject", sessionID.String(),
		"reason", "logout",
	)
	return nil
}

func (s *Service) loginFailed(ctx context.Context, reason, userID string) {
	s.incrementLogin("bad_credentials")
	s.logAudit(ctx, audit.EventLoginFailed, "user_id", userID, "reason", reason)
}

func (s *Service) incrementLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(outcome)
	}
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("civicfund-timing-pad"), s.bcryptCost)
	})
	return s.dummyHash
}

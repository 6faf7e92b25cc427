package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"civicfund/internal/auth/models"
	"civicfund/internal/auth/store/user"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/requestcontext"
)

// NewAccount describes a user to create. Set PasswordHash when the password
// was hashed earlier (registration approval); otherwise Password is hashed.
type NewAccount struct {
	Email        string
	FullName     string
	Password     string
	PasswordHash string
	Role         id.Role
}

var reviewEvents = map[models.Action]audit.AuditEvent{
	models.ActionSuspend:    audit.EventUserSuspended,
	models.ActionReactivate: audit.EventUserReactivated,
	models.ActionDeactivate: audit.EventUserDeactivated,
}

// HashPassword enforces the password length bounds and returns a bcrypt hash.
func (s *Service) HashPassword(password string) (string, error) {
	if n := utf8.RuneCountInString(password); n < models.MinPasswordLength || len(password) > models.MaxPasswordLength {
		return "", dErrors.New(dErrors.CodeValidation, "password must be between 8 and 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(hash), nil
}

func (s *Service) CreateUser(ctx context.Context, in NewAccount) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.CreateUser", trace.WithAttributes(
		attribute.String("user.role", in.Role.String()),
	))
	defer span.End()

	hash := in.PasswordHash
	if hash == "" {
		var err error
		if hash, err = s.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	u, err := models.NewUser(id.UserID(uuid.New()), in.Email, in.FullName, hash, in.Role, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersCreated(u.Role.String())
	}
	s.logAudit(ctx, audit.EventUserCreated,
		"user_id", u.ID.String(),
		"subject", u.ID.String(),
		"role", u.Role.String(),
	)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, filter models.ListFilter) ([]*models.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// CountByRole tallies accounts for the admin overview.
func (s *Service) CountByRole(ctx context.Context) (map[id.Role]int, error) {
	users, err := s.ListUsers(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[id.Role]int)
	for _, u := range users {
		counts[u.Role]++
	}
	return counts, nil
}

// ReviewUser applies an admin status action. Admins cannot act on themselves.
func (s *Service) ReviewUser(ctx context.Context, userID id.UserID, action models.Action, reason string) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.ReviewUser", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("action", string(action)),
	))
	defer span.End()

	event, ok := reviewEvents[action]
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown user action: "+string(action))
	}
	actor := requestcontext.UserID(ctx)
	if actor == userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "administrators cannot change their own account status")
	}

	now := requestcontext.Now(ctx)
	u, err := s.users.Execute(ctx, userID,
		func(u *models.User) error {
			if err := u.CanReview(action); err != nil {
				return dErrors.New(dErrors.CodeConflict, err.Error())
			}
			return nil
		},
		func(u *models.User) { u.ApplyReview(action, now) },
	)
	if err != nil {
		recordSpanError(span, err)
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		if errors.Is(err, user.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	s.logAudit(ctx, event,
		"user_id", u.ID.String(),
		"subject", u.ID.String(),
		"actor_id", actor.String(),
		"reason", reason,
	)
	return u, nil
}

package jwttoken

import (
	"context"

	dErrors "civicfund/pkg/domain-errors"
	authmw "civicfund/pkg/platform/middleware/auth"
)

// RevocationChecker reports whether a session was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Role:      claims.Role,
	}
}

// JWTServiceAdapter satisfies the auth middleware's validator and rejects
// tokens whose session has been revoked.
type JWTServiceAdapter struct {
	service     *JWTService
	revocations RevocationChecker
}

func NewJWTServiceAdapter(service *JWTService, revocations RevocationChecker) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service, revocations: revocations}
}

func (a *JWTServiceAdapter) ValidateToken(ctx context.Context, tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(ctx, claims.SessionID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check session revocation")
		}
		if revoked {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session has been revoked")
		}
	}
	return ToMiddlewareClaims(claims), nil
}

package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfund/internal/auth/store/revocation"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
)

var (
	jwtService = NewJWTService("test-signing-key", "civicfund-test")
	userID     = id.UserID(uuid.New())
	sessionID  = id.SessionID(uuid.New())
	expiresIn  = time.Hour
)

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(userID, sessionID, id.RoleOrganizer, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "organizer", claims.Role)
	assert.Equal(t, "civicfund-test", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "invalid token")
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(userID, sessionID, id.RoleDonor, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "token has expired")
}

func Test_ValidateToken_WrongIssuerOrKey(t *testing.T) {
	other := NewJWTService("test-signing-key", "someone-else")
	token, err := other.GenerateAccessToken(userID, sessionID, id.RoleDonor, expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.Error(t, err)

	forged := NewJWTService("another-key", "civicfund-test")
	token, err = forged.GenerateAccessToken(userID, sessionID, id.RoleAdmin, expiresIn)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.Error(t, err)
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: userID.String(), Role: "admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.Error(t, err)
}

func Test_AdapterRejectsRevokedSessions(t *testing.T) {
	ctx := context.Background()
	revocations := revocation.NewInMemoryList()
	adapter := NewJWTServiceAdapter(jwtService, revocations)

	token, err := jwtService.GenerateAccessToken(userID, sessionID, id.RoleDonor, expiresIn)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "donor", claims.Role)

	require.NoError(t, revocations.RevokeSession(ctx, sessionID.String(), time.Hour))
	_, err = adapter.ValidateToken(ctx, token)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "revoked")
}

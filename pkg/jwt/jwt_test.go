package jwt

import (
	"testing"
	"time"

	"telehealth-booking/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func TestAccessTokenCarriesRole(t *testing.T) {
	svc := newTestService()
	sub := Subject{UserID: uuid.New(), Email: "dr.a@example.com", RoleID: 2}

	token, tokenID, err := svc.GenerateAccessToken(sub)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID, claims.UserID)
	assert.Equal(t, 2, claims.RoleID)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateRefreshToken(Subject{UserID: uuid.New(), RoleID: 3})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateAccessToken(Subject{UserID: uuid.New(), RoleID: 3})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token, AccessToken)
	assert.Error(t, err)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	other := NewJWTService(config.JWTConfig{Secret: "other", AccessExpiry: time.Minute})
	token, _, err := other.GenerateAccessToken(Subject{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token, AccessToken)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, model.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	parsed, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
	assert.InDelta(t, time.Hour.Seconds(), svc.Remaining(claims).Seconds(), 5)
}

func TestJWTService_DefaultTTL(t *testing.T) {
	svc := NewJWTService("secret", 0)
	assert.Equal(t, DefaultTokenTTL, svc.TTL())
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, err := svc.GenerateToken(uuid.New(), model.RoleCustomer)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTService("other", time.Hour).ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService("secret", time.Hour)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := expired.GenerateToken(uuid.New(), model.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(old)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("non uuid subject", func(t *testing.T) {
		claims := &Claims{
			UserID: "42",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(raw)
		assert.Error(t, err)
	})
}

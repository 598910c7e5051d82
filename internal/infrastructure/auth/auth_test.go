package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough",
		Issuer:     "dropship-test",
		Expiration: time.Hour,
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.Issue("admin", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.True(t, claims.IsAdmin())
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.RemainingTTL(), 59*time.Minute)
}

func TestJWTService_Validate(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		_, err := svc.Validate(token.AccessToken[:len(token.AccessToken)-2] + "xx")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret", Issuer: "dropship-test", Expiration: time.Hour})
		_, err := other.Validate(token.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-that-is-long-enough", Issuer: "someone-else", Expiration: time.Hour})
		_, err := other.Validate(token.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newTestJWTService()
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := past.Issue("admin", RoleAdmin)
		require.NoError(t, err)

		_, err = svc.Validate(old.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: RoleAdmin})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Validate(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTService_EmptySecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Issuer: "x", Expiration: time.Hour})
	_, err := svc.Issue("admin", RoleAdmin)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestCredentials(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	creds := NewCredentials("admin", hash)
	assert.NoError(t, creds.Verify("admin", "s3cret"))
	assert.ErrorIs(t, creds.Verify("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, creds.Verify("root", "s3cret"), ErrInvalidCredentials)

	assert.ErrorIs(t, NewCredentials("admin", "").Verify("admin", ""), ErrInvalidCredentials)

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestInMemoryTokenRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryTokenRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, r.Revoke(ctx, "jti-2", 0))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

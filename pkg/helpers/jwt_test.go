package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestAccessTokenValidUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", 300*time.Minute).WithClock(fixedClock(&now))

	tok, exp, err := m.GenerateAccessToken("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, now.Add(300*time.Minute), exp)

	now = exp.Add(-time.Second)
	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)

	now = exp
	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	now = exp.Add(time.Hour)
	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessTokenExpiryMatchesClaimAtSubSecondClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 900*int(time.Millisecond), time.UTC)
	m := NewJWTManager("secret", time.Minute).WithClock(fixedClock(&now))

	tok, exp, err := m.GenerateAccessToken("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 1, 0, 0, time.UTC), exp)

	now = exp.Add(-time.Millisecond)
	_, err = m.ParseAccessToken(tok)
	require.NoError(t, err)

	now = exp
	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessTokenRejectsOtherSecret(t *testing.T) {
	tok, _, err := NewJWTManager("one", time.Hour).GenerateAccessToken("a@x.com")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).ParseAccessToken(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAccessTokenRejectsGarbageAndNone(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	_, err := m.ParseAccessToken("not-a-token")
	assert.Error(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(s)
	assert.Error(t, err)
}

func TestAccessTokenRequiresExpiryAndSubject(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "a@x.com"})
	s, err := noExp.SignedString(m.Secret)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(s)
	assert.Error(t, err)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err = noSub.SignedString(m.Secret)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(s)
	assert.Error(t, err)
}

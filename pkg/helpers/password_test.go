package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.True(t, CompareHashAndPassword(hash, "pw"))
	assert.False(t, CompareHashAndPassword(hash, "pw "))
	assert.False(t, CompareHashAndPassword(hash, ""))
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCompareAcceptsBcryptHashes(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(string(legacy), "password123"))
	assert.False(t, CompareHashAndPassword(string(legacy), "password124"))
}

func TestCompareRejectsMalformedHashes(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=0,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=100000,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=8,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=4294967295,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=2$$a2V5",
	} {
		assert.NotPanics(t, func() {
			assert.False(t, CompareHashAndPassword(h, "pw"), h)
		}, h)
	}
}

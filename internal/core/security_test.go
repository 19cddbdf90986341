// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="))

	ok, err := VerifyPassword("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("secret1", "plaintext")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerifyPasswordTimingSafeUnknownAccount(t *testing.T) {
	ok, newHash, err := VerifyPasswordTimingSafe("unknown-account-placeholder", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)
}

func TestRefreshTokenHashing(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	hash := HashToken(token)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken(token))
	assert.NotEqual(t, hash, HashToken(token+"x"))
}

func TestVerifyPasswordTimingSafeUpgradesOldParams(t *testing.T) {
	weak := argonParams{memory: 8 * 1024, time: 1, threads: 1, keyLen: 32}
	salt := []byte("0123456789abcdef")
	old := weak.encode(salt, weak.derive("secret1", salt))

	ok, upgraded, err := VerifyPasswordTimingSafe("secret1", &old)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, upgraded)

	params, _, _, err := parseHash(upgraded)
	require.NoError(t, err)
	assert.Equal(t, currentArgon, params)

	ok, upgraded, err = VerifyPasswordTimingSafe("secret1", &upgraded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, upgraded)

	ok, _, err = VerifyPasswordTimingSafe("wrong", &old)
	require.NoError(t, err)
	assert.False(t, ok)
}

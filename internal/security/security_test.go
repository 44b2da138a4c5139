package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptorRoundTrip(t *testing.T) {
	enc, err := NewEncryptor([]byte("some arbitrary length secret"))
	require.NoError(t, err)

	ct, err := enc.Encrypt("hello there")
	require.NoError(t, err)
	assert.NotEqual(t, "hello there", ct)

	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "hello there", pt)

	_, err = enc.Decrypt("not ciphertext")
	assert.Error(t, err)
}

func TestTokenService(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.CreateForUser("user-123")
	require.NoError(t, err)

	sub, err := svc.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)

	_, err = svc.Subject(token + "tampered")
	assert.Error(t, err)

	t.Run("Expired", func(t *testing.T) {
		expired := NewTokenService("secret", -time.Minute)
		token, err := expired.CreateForUser("user-123")
		require.NoError(t, err)
		_, err = svc.Subject(token)
		assert.Error(t, err)
	})
}

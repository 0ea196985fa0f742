package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	var sessionIndex, secret [16]byte
	for i := range secret {
		secret[i] = byte(i * 3)
	}
	appKey := []byte("app-key")
	ephemeral := []byte("ephemeral-pub")
	plaintext := []byte("hello non-personalized world")

	msg, err := Encrypt(appKey, sessionIndex, secret, ephemeral, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, msg.AdHocIndex, msg.MacIndex)
	assert.Len(t, msg.MAC, 32)

	got, err := Decrypt(msg)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptRejectsEqualIndices(t *testing.T) {
	var sessionIndex, secret [16]byte
	msg, err := Encrypt([]byte("app"), sessionIndex, secret, []byte("eph"), []byte("data"))
	require.NoError(t, err)

	msg.MacIndex = msg.AdHocIndex
	_, err = Decrypt(msg)
	require.Error(t, err)
}

func TestDecryptRejectsTamperedMAC(t *testing.T) {
	var sessionIndex, secret [16]byte
	msg, err := Encrypt([]byte("app"), sessionIndex, secret, []byte("eph"), []byte("data"))
	require.NoError(t, err)

	msg.MAC[0] ^= 0xFF
	_, err = Decrypt(msg)
	require.Error(t, err)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	var sessionIndex, secret [16]byte
	msg, err := Encrypt([]byte("app"), sessionIndex, secret, []byte("eph"), []byte("0123456789abcdef"))
	require.NoError(t, err)

	msg.EncryptedData[0] ^= 0xFF
	_, err = Decrypt(msg)
	require.Error(t, err)
}

func TestEncryptProducesDistinctNoncesAcrossCalls(t *testing.T) {
	var sessionIndex, secret [16]byte
	a, err := Encrypt([]byte("app"), sessionIndex, secret, []byte("eph"), []byte("data"))
	require.NoError(t, err)
	b, err := Encrypt([]byte("app"), sessionIndex, secret, []byte("eph"), []byte("data"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Nonce, b.Nonce)
}

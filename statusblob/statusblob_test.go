package statusblob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wultra/powerauth-crypto-core/primitives"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}

	b := Blob{
		ActivationStatus:  2,
		CurrentVersion:    3,
		UpgradeVersion:    0,
		FailedAttempts:    1,
		MaxFailedAttempts: 5,
	}

	ct, err := Encode(b, key)
	require.NoError(t, err)
	require.Len(t, ct, 16)

	got, err := Decode(ct, key)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	key := make([]byte, 16)
	otherKey := make([]byte, 16)
	otherKey[0] = 0x01

	b := Blob{ActivationStatus: 2, CurrentVersion: 1, MaxFailedAttempts: 5}
	ct, err := Encode(b, key)
	require.NoError(t, err)

	_, err = Decode(ct, otherKey)
	require.Error(t, err)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	key := make([]byte, 16)
	_, err := Decode(make([]byte, 15), key)
	require.Error(t, err)
}

func TestIsValid(t *testing.T) {
	key := make([]byte, 16)
	b := Blob{ActivationStatus: 1}
	ct, err := Encode(b, key)
	require.NoError(t, err)

	iv := make([]byte, 16)
	plain, err := primitives.AESCBCDecrypt(ct, iv, key, primitives.NoPadding)
	require.NoError(t, err)
	assert.True(t, IsValid(plain))
	assert.False(t, IsValid(make([]byte, 4)))
}

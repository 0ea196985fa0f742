package token

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenIDIsUUID(t *testing.T) {
	id := GenerateTokenID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestGenerateNonceLength(t *testing.T) {
	n, err := GenerateNonce()
	require.NoError(t, err)
	assert.Len(t, n, 16)
}

func TestGenerateTimestampFormat(t *testing.T) {
	ts := GenerateTimestamp(time.UnixMilli(1700000000000))
	assert.Equal(t, "1700000000000", string(ts))
}

func TestComputeDigestKnownVector(t *testing.T) {
	nonce, err := hex.DecodeString("000102030405060708090A0B0C0D0E0F")
	require.NoError(t, err)
	timestamp := []byte("1700000000000")
	secret := []byte("token-secret")

	a, err := ComputeDigest(nonce, timestamp, secret)
	require.NoError(t, err)
	b, err := ComputeDigest(nonce, timestamp, secret)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
	assert.Equal(t, "559f735af04e72b2e9a367276b86f25c9bd4efd1bfdc989b5f87535f9cbf2386", hex.EncodeToString(a))
}

func TestComputeDigestRejectsBadNonceLength(t *testing.T) {
	_, err := ComputeDigest(make([]byte, 15), []byte("1700000000000"), []byte("secret"))
	require.Error(t, err)
}

func TestVerifyDigestRoundTrip(t *testing.T) {
	nonce, err := GenerateNonce()
	require.NoError(t, err)
	timestamp := GenerateTimestamp(time.Now())
	secret := []byte("token-secret")

	digest, err := ComputeDigest(nonce, timestamp, secret)
	require.NoError(t, err)

	ok, err := VerifyDigest(nonce, timestamp, secret, digest)
	require.NoError(t, err)
	assert.True(t, ok)

	digest[0] ^= 0xFF
	ok, err = VerifyDigest(nonce, timestamp, secret, digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

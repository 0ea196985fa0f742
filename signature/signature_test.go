package signature

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestComputeRejectsBadKeyCount(t *testing.T) {
	ctr := make([]byte, 16)
	_, err := Compute(nil, []byte("data"), ctr)
	require.Error(t, err)

	fourKeys := [][]byte{{1}, {2}, {3}, {4}}
	_, err = Compute(fourKeys, []byte("data"), ctr)
	require.Error(t, err)
}

func TestComputeRejectsBadCounterLength(t *testing.T) {
	_, err := Compute([][]byte{{1}}, []byte("data"), make([]byte, 15))
	require.Error(t, err)
}

func TestComputeDeterministic(t *testing.T) {
	key := mustHex(t, "0F0E0D0C0B0A09080706050403020100")
	ctr := mustHex(t, "00000000000000000000000000000001")
	data := []byte("POST&/pa/signature/validate&bm9uY2U=&Ym9keQ==")

	a, err := Compute([][]byte{key}, data, ctr)
	require.NoError(t, err)
	b, err := Compute([][]byte{key}, data, ctr)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 8)
}

func TestComputeTwoFactorHasTwoComponents(t *testing.T) {
	possession := mustHex(t, "0F0E0D0C0B0A09080706050403020100")
	knowledge := mustHex(t, "000102030405060708090A0B0C0D0E0F")
	ctr := make([]byte, 16)
	binary16(ctr, 42)
	data := []byte("POST&/pa/signature/validate&bm9uY2U=&Ym9keQ==")

	sig, err := Compute([][]byte{possession, knowledge}, data, ctr)
	require.NoError(t, err)

	parts := splitDash(sig)
	require.Len(t, parts, 2)
	for _, p := range parts {
		assert.Len(t, p, 8)
	}
}

func TestComputeThreeFactorUsesOffByOneInnerChain(t *testing.T) {
	// This pins the inner-chaining loop's key indexing: component i chains
	// through keys[1..i], not keys[0..i-1]. Changing the indexing would
	// change this signature even though the keys and counter are unchanged.
	k0 := mustHex(t, "00000000000000000000000000000000")
	k1 := mustHex(t, "11111111111111111111111111111111")
	k2 := mustHex(t, "22222222222222222222222222222222")
	ctr := make([]byte, 16)
	data := []byte("data")

	full, err := Compute([][]byte{k0, k1, k2}, data, ctr)
	require.NoError(t, err)

	parts := splitDash(full)
	require.Len(t, parts, 3)

	oneFactor, err := Compute([][]byte{k0}, data, ctr)
	require.NoError(t, err)
	// component_0 never chains through other keys, so it must match the
	// single-factor computation exactly.
	assert.Equal(t, oneFactor, parts[0])
}

func TestVerifyRoundTrip(t *testing.T) {
	key := mustHex(t, "0F0E0D0C0B0A09080706050403020100")
	ctr := mustHex(t, "00000000000000000000000000000001")
	data := []byte("POST&/pa/signature/validate&bm9uY2U=&Ym9keQ==")

	sig, err := Compute([][]byte{key}, data, ctr)
	require.NoError(t, err)

	ok, err := Verify([][]byte{key}, data, ctr, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify([][]byte{key}, data, ctr, "00000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func binary16(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[15-i] = byte(v >> (8 * i))
	}
}

func splitDash(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

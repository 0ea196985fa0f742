package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wultra/powerauth-crypto-core/primitives"
)

func TestDeriveDeterministic(t *testing.T) {
	var ms MasterSecret
	copy(ms[:], []byte("0123456789ABCDEF"))

	a, err := Derive(ms, IndexPossession)
	require.NoError(t, err)
	b, err := Derive(ms, IndexPossession)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Derive(ms, IndexKnowledge)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDeriveHmacDeterministic(t *testing.T) {
	var ms MasterSecret
	copy(ms[:], []byte("0123456789ABCDEF"))

	idx := make([]byte, 16)
	idx[0] = 0x01

	a, err := DeriveHmac(ms, idx)
	require.NoError(t, err)
	b, err := DeriveHmac(ms, idx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeriveMasterSecretSymmetric(t *testing.T) {
	devicePriv, err := primitives.GenerateECDHKeyPair()
	require.NoError(t, err)
	serverPriv, err := primitives.GenerateECDHKeyPair()
	require.NoError(t, err)

	msDevice, err := DeriveMasterSecret(devicePriv, serverPriv.PublicKey().Bytes())
	require.NoError(t, err)
	msServer, err := DeriveMasterSecret(serverPriv, devicePriv.PublicKey().Bytes())
	require.NoError(t, err)

	assert.Equal(t, msDevice, msServer)
}

func TestDeriveNamedKeysAndFactors(t *testing.T) {
	var ms MasterSecret
	copy(ms[:], []byte("0123456789ABCDEF"))

	nk, err := DeriveNamedKeys(ms)
	require.NoError(t, err)

	assert.NotEqual(t, nk.Possession, nk.Knowledge)
	assert.NotEqual(t, nk.Knowledge, nk.Biometry)
	assert.NotEqual(t, nk.Transport, nk.Vault)

	f1, err := nk.Factors(1)
	require.NoError(t, err)
	assert.Len(t, f1, 1)

	f3, err := nk.Factors(3)
	require.NoError(t, err)
	assert.Len(t, f3, 3)

	_, err = nk.Factors(4)
	require.Error(t, err)
}

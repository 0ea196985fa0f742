package activation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wultra/powerauth-crypto-core/primitives"
	"github.com/wultra/powerauth-crypto-core/statusblob"
)

func TestClientStateTransitions(t *testing.T) {
	s := ClientIdle
	s, err := s.Transition(ClientStarted)
	require.NoError(t, err)
	s, err = s.Transition(ClientKeyExchanged)
	require.NoError(t, err)
	s, err = s.Transition(ClientActive)
	require.NoError(t, err)
	assert.Equal(t, ClientActive, s)

	_, err = ClientIdle.Transition(ClientActive)
	require.Error(t, err)
}

func TestServerStateTransitions(t *testing.T) {
	s := ServerCreated
	s, err := s.Transition(ServerOtpUsed)
	require.NoError(t, err)
	s, err = s.Transition(ServerActive)
	require.NoError(t, err)
	s, err = s.Transition(ServerBlocked)
	require.NoError(t, err)
	s, err = s.Transition(ServerActive)
	require.NoError(t, err)
	assert.Equal(t, ServerActive, s)

	_, err = ServerRemoved.Transition(ServerActive)
	require.Error(t, err)
}

func TestHandshakeHappyPath(t *testing.T) {
	devicePriv, err := primitives.GenerateECDHKeyPair()
	require.NoError(t, err)
	serverPriv, err := primitives.GenerateECDHKeyPair()
	require.NoError(t, err)
	masterPriv, err := primitives.GenerateECDSAKeyPair()
	require.NoError(t, err)

	devicePub := devicePriv.PublicKey().Bytes()

	hello, err := SignHello(devicePub, serverPriv, masterPriv)
	require.NoError(t, err)

	err = VerifyHello(devicePub, hello, &masterPriv.PublicKey)
	require.NoError(t, err)

	seed, err := GenerateV3Seed()
	require.NoError(t, err)

	deviceResult, err := Complete(devicePriv, hello.ServerPublicKey, seed)
	require.NoError(t, err)
	serverResult, err := Complete(serverPriv, devicePub, seed)
	require.NoError(t, err)

	assert.Equal(t, deviceResult.MasterSecret, serverResult.MasterSecret)
	assert.Equal(t, deviceResult.NamedKeys.Transport, serverResult.NamedKeys.Transport)

	blob := statusblob.Blob{ActivationStatus: 1, CurrentVersion: 3, MaxFailedAttempts: 5}
	ct, err := statusblob.Encode(blob, serverResult.NamedKeys.Transport[:])
	require.NoError(t, err)

	got, err := statusblob.Decode(ct, deviceResult.NamedKeys.Transport[:])
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestVerifyHelloRejectsTamperedSignature(t *testing.T) {
	devicePriv, err := primitives.GenerateECDHKeyPair()
	require.NoError(t, err)
	serverPriv, err := primitives.GenerateECDHKeyPair()
	require.NoError(t, err)
	masterPriv, err := primitives.GenerateECDSAKeyPair()
	require.NoError(t, err)

	devicePub := devicePriv.PublicKey().Bytes()
	hello, err := SignHello(devicePub, serverPriv, masterPriv)
	require.NoError(t, err)

	hello.Signature[0] ^= 0xFF
	err = VerifyHello(devicePub, hello, &masterPriv.PublicKey)
	require.Error(t, err)
}

package counter

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestV2MaterializeAndAdvance(t *testing.T) {
	c := NewV2()
	m := c.Materialize()
	assert.Equal(t, [16]byte{}, m)

	c = c.Advance()
	m = c.Materialize()
	assert.Equal(t, uint64(1), binary.BigEndian.Uint64(m[8:]))

	c = c.AdvanceBy(41)
	m = c.Materialize()
	assert.Equal(t, uint64(42), binary.BigEndian.Uint64(m[8:]))
}

func TestV3MaterializeAndAdvance(t *testing.T) {
	var seed [16]byte
	seed[15] = 0x01

	c := NewV3(seed)
	assert.Equal(t, seed, c.Materialize())

	c = c.Advance()
	assert.NotEqual(t, seed, c.Materialize())
}

func TestV3ChainDeterministicFirstTenIterates(t *testing.T) {
	var seed [16]byte
	for i := range seed {
		seed[i] = byte(i)
	}

	a := NewV3(seed)
	b := NewV3(seed)

	for i := 0; i < 10; i++ {
		a = a.Advance()
		b = b.Advance()
		require.Equal(t, a.Materialize(), b.Materialize())
	}
}

func TestMaterializeAheadMatchesSequentialAdvance(t *testing.T) {
	var seed [16]byte
	seed[0] = 0x7a

	c := NewV3(seed)
	ahead, err := MaterializeAhead(c, 5)
	require.NoError(t, err)
	require.Len(t, ahead, 5)

	cur := c
	for i := 0; i < 5; i++ {
		cur = cur.Advance()
		assert.Equal(t, cur.Materialize(), ahead[i])
	}
}

func TestMaterializeAheadRejectsNegative(t *testing.T) {
	_, err := MaterializeAhead(NewV2(), -1)
	require.Error(t, err)
}

func TestHashChainStepMatchesAdvance(t *testing.T) {
	var seed [16]byte
	seed[3] = 0x09

	c := NewV3(seed)
	advanced := c.Advance()
	assert.Equal(t, HashChainStep(seed), advanced.Chain)
}

package bitvec_test

import (
	"testing"

	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveLength(t *testing.T) {
	_, err := bitvec.New(0)
	require.Error(t, err)

	_, err = bitvec.New(-1)
	require.Error(t, err)
}

func TestSetBitGetBit_MSBFirst(t *testing.T) {
	v, err := bitvec.New(16)
	require.NoError(t, err)

	v.SetBit(0, 1)
	v.SetBit(15, 1)

	assert.Equal(t, 1, v.Bit(0))
	assert.Equal(t, 1, v.Bit(15))
	assert.Equal(t, 0, v.Bit(1))

	bytes := v.ToBytes()
	require.Len(t, bytes, 2)
	assert.Equal(t, byte(0x80), bytes[0])
	assert.Equal(t, byte(0x01), bytes[1])
}

func TestFromBytesToBytesRoundTrip(t *testing.T) {
	in := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	v, err := bitvec.New(len(in) * 8)
	require.NoError(t, err)

	v.FromBytes(in)
	assert.Equal(t, in, v.ToBytes())
}

func TestXOROR_AND(t *testing.T) {
	a, _ := bitvec.New(8)
	b, _ := bitvec.New(8)
	a.FromBytes([]byte{0b1100_1100})
	b.FromBytes([]byte{0b1010_1010})

	assert.Equal(t, []byte{0b0110_0110}, a.XOR(b).ToBytes())
	assert.Equal(t, []byte{0b1110_1110}, a.OR(b).ToBytes())
	assert.Equal(t, []byte{0b1000_1000}, a.AND(b).ToBytes())
}

func TestNOT_MasksTailBits(t *testing.T) {
	v, _ := bitvec.New(4)
	v.FromBytes([]byte{0b1010_0000})

	not := v.NOT()
	assert.Equal(t, []byte{0b0101_0000}, not.ToBytes())
}

func TestHammingWeight(t *testing.T) {
	v, _ := bitvec.New(12)
	v.FromBytes([]byte{0xFF, 0xF0})

	assert.Equal(t, 12, v.HammingWeight())
}

func TestIsZero(t *testing.T) {
	v, _ := bitvec.New(8)
	assert.True(t, v.IsZero())

	v.SetBit(3, 1)
	assert.False(t, v.IsZero())
}

func TestEquals(t *testing.T) {
	a, _ := bitvec.New(8)
	b, _ := bitvec.New(8)
	a.FromBytes([]byte{0x42})
	b.FromBytes([]byte{0x42})
	assert.True(t, a.Equals(b))

	b.SetBit(0, 1)
	assert.False(t, a.Equals(b))
}

func TestCloneIsIndependent(t *testing.T) {
	a, _ := bitvec.New(8)
	a.FromBytes([]byte{0x0F})
	clone := a.Clone()

	a.Zero()
	assert.Equal(t, []byte{0x0F}, clone.ToBytes())
}

func TestCopyFrom(t *testing.T) {
	a, _ := bitvec.New(8)
	b, _ := bitvec.New(8)
	b.FromBytes([]byte{0x55})

	a.CopyFrom(b)
	assert.Equal(t, []byte{0x55}, a.ToBytes())
}

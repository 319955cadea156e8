package mask_test

import (
	"testing"

	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/mask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(t *testing.T, n int, bytes ...byte) *bitvec.Vector {
	t.Helper()
	v, err := bitvec.New(n)
	require.NoError(t, err)
	v.FromBytes(bytes)
	return v
}

func TestUpdateBuild_ResetsAtT0(t *testing.T) {
	build := vec(t, 8, 0xFF)
	input := vec(t, 8, 0x00)
	prev := vec(t, 8, 0x00)

	mask.UpdateBuild(build, input, prev, false, 0)
	assert.True(t, build.IsZero())
}

func TestUpdateBuild_AccumulatesChanges(t *testing.T) {
	build := vec(t, 8, 0x00)
	input := vec(t, 8, 0b0000_1111)
	prev := vec(t, 8, 0b0000_0000)

	mask.UpdateBuild(build, input, prev, false, 1)
	assert.Equal(t, []byte{0b0000_1111}, build.ToBytes())

	input2 := vec(t, 8, 0b1111_0000)
	prev2 := vec(t, 8, 0b0000_1111)
	mask.UpdateBuild(build, input2, prev2, false, 2)
	assert.Equal(t, []byte{0xFF}, build.ToBytes())
}

func TestUpdateMask_NewMaskUsesPriorBuild(t *testing.T) {
	m := vec(t, 8, 0x00)
	input := vec(t, 8, 0b0000_0001)
	prev := vec(t, 8, 0b0000_0000)
	prevBuild := vec(t, 8, 0b1111_0000)

	mask.UpdateMask(m, input, prev, prevBuild, true)
	assert.Equal(t, []byte{0b1111_0001}, m.ToBytes())
}

func TestComputeChange_AtT0EqualsMask(t *testing.T) {
	change := vec(t, 8, 0x00)
	m := vec(t, 8, 0b1010_1010)

	mask.ComputeChange(change, m, nil, 0)
	assert.True(t, change.Equals(m))
}

func TestComputeChange_XORsPriorMask(t *testing.T) {
	change := vec(t, 8, 0x00)
	m := vec(t, 8, 0b1111_0000)
	prevMask := vec(t, 8, 0b1100_0000)

	mask.ComputeChange(change, m, prevMask, 1)
	assert.Equal(t, []byte{0b0011_0000}, change.ToBytes())
}

func TestPredictResidualReconstructRoundTrip(t *testing.T) {
	input := vec(t, 8, 0b1100_1010)
	prev := vec(t, 8, 0b1010_0101)
	m := vec(t, 8, 0b1111_0000)

	residual := mask.Residual(input, prev, m)
	reconstructed := mask.Reconstruct(residual, prev, m)

	assert.True(t, input.Equals(reconstructed))
}

package session_test

import (
	"bytes"
	"testing"

	"github.com/stratolink/pocketcodec/bitstream"
	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVector(t *testing.T, f int, data []byte) *bitvec.Vector {
	t.Helper()
	v, err := bitvec.New(f)
	require.NoError(t, err)
	v.FromBytes(data)
	return v
}

// Scenario A - identity stream: F=64, R=1, repeated input is compressed
// away after the first uncompressed packet.
func TestScenarioA_IdentityStream(t *testing.T) {
	const f = 64
	comp, err := session.NewCompressor(f, session.WithRobustness(1), session.WithSchedule(10, 20, 50))
	require.NoError(t, err)
	defer comp.Release()

	decomp, err := session.NewDecompressor(f, session.WithRobustness(1))
	require.NoError(t, err)

	frame := bytes.Repeat([]byte{0x55}, 8)
	input := bytes.Repeat(frame, 10)

	compressed, err := comp.Compress(input)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(input), "repeated input should compress")

	totalBits := len(compressed) * 8
	out, err := decomp.Decompress(compressed, totalBits)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

// Scenario B - one bit drifts: F=8, R=0, manual mode.
func TestScenarioB_OneBitDrifts(t *testing.T) {
	const f = 8
	comp, err := session.NewCompressor(f, session.WithRobustness(0))
	require.NoError(t, err)
	defer comp.Release()

	decomp, err := session.NewDecompressor(f, session.WithRobustness(0))
	require.NoError(t, err)

	inputs := [][]byte{{0xAA}, {0xAB}, {0xAB}}
	params := []*session.CompressParams{
		{SendMaskFlag: true, UncompressedFlag: true},
		{},
		{},
	}

	var allBytes []byte
	var allBits int
	for i, in := range inputs {
		vec := mustVector(t, f, in)
		packet, err := comp.CompressPacket(vec, params[i])
		require.NoError(t, err)
		allBytes = append(allBytes, packet...)
		allBits += len(packet) * 8
	}

	r := bitstream.NewReaderBits(allBytes, allBits)
	for i, in := range inputs {
		out, err := decomp.DecompressPacket(r)
		require.NoError(t, err)
		assert.Equal(t, in, out.ToBytes(), "packet %d", i)
		r.AlignByte()
	}
}

// Scenario C - all zeros: F=16, R=2; compressed output must be smaller
// than the raw 200-byte stream.
func TestScenarioC_AllZeros(t *testing.T) {
	const f = 16
	comp, err := session.NewCompressor(f, session.WithRobustness(2), session.WithSchedule(5, 10, 20))
	require.NoError(t, err)
	defer comp.Release()

	decomp, err := session.NewDecompressor(f, session.WithRobustness(2))
	require.NoError(t, err)

	input := make([]byte, 200)

	compressed, err := comp.Compress(input)
	require.NoError(t, err)
	assert.Less(t, len(compressed), 200)

	out, err := decomp.Decompress(compressed, len(compressed)*8)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

// Scenario D - all ones: F=16, R=2, same schedule.
func TestScenarioD_AllOnes(t *testing.T) {
	const f = 16
	comp, err := session.NewCompressor(f, session.WithRobustness(2), session.WithSchedule(5, 10, 20))
	require.NoError(t, err)
	defer comp.Release()

	decomp, err := session.NewDecompressor(f, session.WithRobustness(2))
	require.NoError(t, err)

	input := bytes.Repeat([]byte{0xFF}, 200)

	compressed, err := comp.Compress(input)
	require.NoError(t, err)

	out, err := decomp.Decompress(compressed, len(compressed)*8)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

// Scenario F - loss recovery: drop a burst of packets within the
// robustness window and recover via NotifyPacketLoss once a fresh
// uncompressed packet arrives, per §4.6's guarantee that exact output
// resumes no later than the next ṙt=1 packet.
func TestScenarioF_LossRecovery(t *testing.T) {
	const f = 64
	const numPackets = 20
	const dropStart, dropCount = 10, 3

	comp, err := session.NewCompressor(f, session.WithRobustness(3))
	require.NoError(t, err)
	defer comp.Release()

	decomp, err := session.NewDecompressor(f, session.WithRobustness(3))
	require.NoError(t, err)

	var packets [][]byte
	var inputs [][]byte
	for i := 0; i < numPackets; i++ {
		frame := bytes.Repeat([]byte{byte(i)}, 8)
		vec := mustVector(t, f, frame)

		params := &session.CompressParams{}
		if i == 0 || i == dropStart+dropCount {
			// Packet 0 establishes the stream; the packet immediately
			// following the gap re-establishes It-1 for the decoder.
			params.SendMaskFlag = true
			params.UncompressedFlag = true
		}

		packet, err := comp.CompressPacket(vec, params)
		require.NoError(t, err)
		// CompressPacket's result aliases the compressor's buffer; keep a copy.
		packets = append(packets, append([]byte(nil), packet...))
		inputs = append(inputs, frame)
	}

	for i, packet := range packets {
		if i >= dropStart && i < dropStart+dropCount {
			if i == dropStart+dropCount-1 {
				decomp.NotifyPacketLoss(dropCount)
			}
			continue
		}

		r := bitstream.NewReaderBits(packet, len(packet)*8)
		out, err := decomp.DecompressPacket(r)
		require.NoError(t, err, "packet %d", i)
		assert.Equal(t, inputs[i], out.ToBytes(), "packet %d", i)
	}
}

func TestCompressor_RejectsWrongLength(t *testing.T) {
	comp, err := session.NewCompressor(16, session.WithSchedule(1, 1, 1))
	require.NoError(t, err)
	defer comp.Release()

	wrong, err := bitvec.New(8)
	require.NoError(t, err)

	_, err = comp.CompressPacket(wrong, nil)
	require.Error(t, err)
}

func TestConfig_RejectsInvalidRobustness(t *testing.T) {
	_, err := session.NewCompressor(16, session.WithRobustness(8))
	require.Error(t, err)
}

func TestConfig_RejectsInvalidF(t *testing.T) {
	_, err := session.NewCompressor(0)
	require.Error(t, err)

	_, err = session.NewCompressor(70000)
	require.Error(t, err)
}

func TestCompressor_ResetReturnsToInitialState(t *testing.T) {
	const f = 16
	comp, err := session.NewCompressor(f, session.WithSchedule(2, 2, 2))
	require.NoError(t, err)
	defer comp.Release()

	in := mustVector(t, f, []byte{0x12, 0x34})
	_, err = comp.CompressPacket(in, nil)
	require.NoError(t, err)

	comp.Reset()

	in2 := mustVector(t, f, []byte{0x12, 0x34})
	first, err := comp.CompressPacket(in2, nil)
	require.NoError(t, err)

	comp2, err := session.NewCompressor(f, session.WithSchedule(2, 2, 2))
	require.NoError(t, err)
	defer comp2.Release()

	fresh, err := comp2.CompressPacket(in2, nil)
	require.NoError(t, err)

	assert.Equal(t, fresh, first)
}

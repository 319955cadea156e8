// Package vectors holds integration tests that exercise a full stream
// through session and container together, rather than one package in
// isolation.
//
// CCSDS 124.0-B-1 defines a "simple" housekeeping reference vector
// (F=720, R=1, pt=10, ft=20, rt=50, 9216-byte input, expected 641-byte
// bit-exact output) but that vector's actual bytes are not available
// here. This test instead builds a structurally equivalent stream at
// the same dimensions - a repeating housekeeping-like frame with the
// occasional drifting bit - and asserts the same properties: lossless
// round trip and a compression ratio consistent with a mostly static
// telemetry pattern. If the true vector becomes available, replace
// buildSimplePattern's input with the reference bytes and assert
// len(compressed) == 641 directly.
package vectors

import (
	"bytes"
	"testing"

	"github.com/stratolink/pocketcodec/container"
	"github.com/stratolink/pocketcodec/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	simpleFrameBits  = 720
	simpleRobustness = 1
	simplePt         = 10
	simpleFt         = 20
	simpleRt         = 50
	// simpleNumFrames approximates Scenario E's 9216-byte input at the
	// same 90-byte frame size; 9216 does not divide evenly by 90 (likely
	// reference-vector framing this repo was not given), so this test
	// rounds to the nearest whole number of frames instead.
	simpleNumFrames = 102
)

// buildSimplePattern mimics a mostly-static housekeeping packet stream:
// a fixed frame repeated, with a handful of bits toggling at a few
// points the way slowly-varying sensor readings would.
func buildSimplePattern() []byte {
	frameBytes := simpleFrameBits / 8
	base := make([]byte, frameBytes)
	for i := range base {
		base[i] = byte(i * 7 % 251)
	}

	var out []byte
	for i := 0; i < simpleNumFrames; i++ {
		frame := make([]byte, frameBytes)
		copy(frame, base)
		if i%37 == 0 && i > 0 {
			frame[frameBytes/2] ^= 0x01
		}
		out = append(out, frame...)
	}

	return out
}

func TestSimpleVector_RoundTripAndCompresses(t *testing.T) {
	input := buildSimplePattern()
	require.Len(t, input, simpleNumFrames*simpleFrameBits/8)

	comp, err := session.NewCompressor(
		simpleFrameBits,
		session.WithRobustness(simpleRobustness),
		session.WithSchedule(simplePt, simpleFt, simpleRt),
	)
	require.NoError(t, err)
	defer comp.Release()

	compressed, err := comp.Compress(input)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(input)/4, "a mostly-static stream should compress well past 4x")

	decomp, err := session.NewDecompressor(simpleFrameBits, session.WithRobustness(simpleRobustness))
	require.NoError(t, err)

	restored, err := decomp.Decompress(compressed, len(compressed)*8)
	require.NoError(t, err)
	assert.Equal(t, input, restored)
}

// TestSimpleVector_ThroughArchiveContainer exercises the archival layer
// on top of the already-compressed stream, as a mission ground segment
// bundling many packet files before gzipping them for the downlink
// would.
func TestSimpleVector_ThroughArchiveContainer(t *testing.T) {
	input := buildSimplePattern()

	comp, err := session.NewCompressor(
		simpleFrameBits,
		session.WithRobustness(simpleRobustness),
		session.WithSchedule(simplePt, simpleFt, simpleRt),
	)
	require.NoError(t, err)
	defer comp.Release()

	compressed, err := comp.Compress(input)
	require.NoError(t, err)

	codec, err := container.CreateCodec(container.CompressionGzip, "archive bundle")
	require.NoError(t, err)

	archived, err := codec.Compress(compressed)
	require.NoError(t, err)

	restoredCompressed, err := codec.Decompress(archived)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(compressed, restoredCompressed))

	decomp, err := session.NewDecompressor(simpleFrameBits, session.WithRobustness(simpleRobustness))
	require.NoError(t, err)

	restored, err := decomp.Decompress(restoredCompressed, len(restoredCompressed)*8)
	require.NoError(t, err)
	assert.Equal(t, input, restored)
}

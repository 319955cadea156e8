package transport_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stratolink/pocketcodec/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := transport.NewWriter(&buf)

	payloads := [][]byte{
		[]byte("first packet"),
		[]byte("second packet"),
		[]byte("third"),
	}
	for _, p := range payloads {
		require.NoError(t, w.WriteFrame(p))
	}

	r := transport.NewReader(&buf)
	for i, want := range payloads {
		frame, gap, err := r.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, 0, gap, "frame %d", i)
		assert.Equal(t, uint32(i), frame.Seq)
		assert.Equal(t, want, frame.Payload)
	}

	_, _, err := r.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

// Skipping a sequence number (simulating a dropped frame in transit)
// must surface as a non-zero gap on the next successfully read frame.
func TestReader_DetectsGap(t *testing.T) {
	var buf bytes.Buffer
	w := transport.NewWriter(&buf)

	require.NoError(t, w.WriteFrame([]byte("a"))) // seq 0
	w.SetSeq(2)
	require.NoError(t, w.WriteFrame([]byte("c"))) // seq 2, skipping seq 1

	r := transport.NewReader(&buf)

	first, gap, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, gap)
	assert.Equal(t, []byte("a"), first.Payload)

	second, gap, err := r.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, 1, gap, "one frame (seq 1) was skipped")
	assert.Equal(t, []byte("c"), second.Payload)
}

func TestReader_DetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	w := transport.NewWriter(&buf)
	require.NoError(t, w.WriteFrame([]byte("payload")))

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	r := transport.NewReader(bytes.NewReader(corrupted))
	_, _, err := r.ReadFrame()
	require.Error(t, err)
}

func TestLossySimulator_DropsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	w := transport.NewWriter(&buf)
	sim := transport.NewLossySimulator(w, 1.0, 42)

	sent, err := sim.Send([]byte("never arrives"))
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 1, sim.DrainLoss())
	assert.Equal(t, 0, sim.DrainLoss(), "drain resets the counter")
}

func TestLossySimulator_NeverDropsAtZeroRate(t *testing.T) {
	var buf bytes.Buffer
	w := transport.NewWriter(&buf)
	sim := transport.NewLossySimulator(w, 0.0, 7)

	for i := 0; i < 10; i++ {
		sent, err := sim.Send([]byte("always arrives"))
		require.NoError(t, err)
		assert.True(t, sent)
	}
	assert.Equal(t, 0, sim.DrainLoss())
}

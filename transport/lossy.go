package transport

import "math/rand"

// LossySimulator drops frames passed to Send at a fixed rate, using a
// caller-seeded PRNG so test runs are reproducible. It exists to exercise
// session.Decompressor.NotifyPacketLoss end to end without a real network.
type LossySimulator struct {
	fw   *Writer
	rng  *rand.Rand
	rate float64

	pendingLoss int
}

// NewLossySimulator wraps fw, dropping each frame independently with
// probability rate (0 <= rate <= 1), using seed for reproducibility.
func NewLossySimulator(fw *Writer, rate float64, seed int64) *LossySimulator {
	return &LossySimulator{
		fw:   fw,
		rng:  rand.New(rand.NewSource(seed)),
		rate: rate,
	}
}

// Send frames payload and probabilistically drops it. It returns whether
// the frame was actually sent.
func (ls *LossySimulator) Send(payload []byte) (sent bool, err error) {
	if ls.rng.Float64() < ls.rate {
		ls.pendingLoss++
		return false, nil
	}

	if err := ls.fw.WriteFrame(payload); err != nil {
		return false, err
	}

	return true, nil
}

// DrainLoss returns the number of consecutive frames dropped since the
// last call and resets the counter. A caller feeds this straight into
// session.Decompressor.NotifyPacketLoss once the next frame lands.
func (ls *LossySimulator) DrainLoss() int {
	n := ls.pendingLoss
	ls.pendingLoss = 0

	return n
}

// Package session assembles the lower codec layers into the stateful
// CCSDS 124.0-B-1 Compressor and Decompressor: the packet layout
// ot = ht || qt || ut, the robustness window Xt, the effective
// robustness Vt, and the automatic/manual flag scheduler.
package session

import (
	"fmt"

	"github.com/stratolink/pocketcodec/bitstream"
	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/codec"
	"github.com/stratolink/pocketcodec/errs"
	"github.com/stratolink/pocketcodec/internal/options"
	"github.com/stratolink/pocketcodec/mask"
)

// historyDepth is the fixed ring buffer capacity for change-vector and
// new-mask-flag history, per the standard's Vt/ct lookback window.
const historyDepth = 16

// CompressParams carries the per-packet flags a caller supplies in
// manual mode (any schedule limit 0). In automatic mode these are
// computed internally and any caller-supplied value is ignored.
type CompressParams struct {
	NewMaskFlag      bool // pt: rebind mask from the build vector
	SendMaskFlag     bool // ft: serialize the full mask in qt
	UncompressedFlag bool // rt: emit It verbatim in ut
}

// Compressor holds the running state of one CCSDS 124.0-B-1 encode
// stream. It is not safe for concurrent use; each independent stream
// owns its own Compressor.
type Compressor struct {
	cfg *Config

	mask      *bitvec.Vector
	prevMask  *bitvec.Vector
	build     *bitvec.Vector
	prevInput *bitvec.Vector

	changeHistory [historyDepth]*bitvec.Vector
	historyIndex  int

	newMaskHistory   [historyDepth]bool
	flagHistoryIndex int

	t int

	ptCounter int
	ftCounter int
	rtCounter int

	workChange      *bitvec.Vector
	workXt          *bitvec.Vector
	workPrevBuild   *bitvec.Vector
	workInvMask     *bitvec.Vector
	workExtractMask *bitvec.Vector
	workMaskShifted *bitvec.Vector
	workMaskDiff    *bitvec.Vector

	writer *bitstream.Writer
}

// NewCompressor constructs a Compressor for F-bit packets.
func NewCompressor(f int, opts ...Option) (*Compressor, error) {
	cfg, err := newConfig(f)
	if err != nil {
		return nil, err
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	c := &Compressor{cfg: cfg, writer: bitstream.NewWriter()}

	for _, v := range []**bitvec.Vector{
		&c.mask, &c.prevMask, &c.build, &c.prevInput,
		&c.workChange, &c.workXt, &c.workPrevBuild,
		&c.workInvMask, &c.workExtractMask, &c.workMaskShifted, &c.workMaskDiff,
	} {
		vec, err := bitvec.New(f)
		if err != nil {
			return nil, err
		}
		*v = vec
	}

	for i := range c.changeHistory {
		vec, err := bitvec.New(f)
		if err != nil {
			return nil, err
		}
		c.changeHistory[i] = vec
	}

	c.Reset()

	return c, nil
}

// Release returns the compressor's pooled output buffer. The Compressor
// must not be used after Release.
func (c *Compressor) Release() {
	c.writer.Release()
}

// F returns the configured packet width in bits.
func (c *Compressor) F() int { return c.cfg.f }

// Reset returns the compressor to t=0 with all history cleared, exactly
// as produced by NewCompressor.
func (c *Compressor) Reset() {
	c.t = 0
	c.historyIndex = 0
	c.flagHistoryIndex = 0

	if c.cfg.initialMask != nil {
		c.mask.CopyFrom(c.cfg.initialMask)
	} else {
		c.mask.Zero()
	}
	c.prevMask.Zero()
	c.build.Zero()
	c.prevInput.Zero()

	for i := range c.changeHistory {
		c.changeHistory[i].Zero()
	}
	for i := range c.newMaskHistory {
		c.newMaskHistory[i] = false
	}

	c.ptCounter = c.cfg.ptLimit
	c.ftCounter = c.cfg.ftLimit
	c.rtCounter = c.cfg.rtLimit
}

// scheduledParams computes ṗt/ḟt/ṙt per §4.5's automatic mode: the
// init regime (t <= R) always forces ft=1, rt=1, pt=0, but the countdown
// counters keep decrementing underneath it so the first post-init event
// can fire immediately.
func (c *Compressor) scheduledParams() CompressParams {
	if c.t == 0 {
		c.ptCounter, c.ftCounter, c.rtCounter = c.cfg.ptLimit, c.cfg.ftLimit, c.cfg.rtLimit
		return CompressParams{SendMaskFlag: true, UncompressedFlag: true}
	}

	pt := c.ptCounter == 1
	ft := c.ftCounter == 1
	rt := c.rtCounter == 1

	if pt {
		c.ptCounter = c.cfg.ptLimit
	} else {
		c.ptCounter--
	}
	if ft {
		c.ftCounter = c.cfg.ftLimit
	} else {
		c.ftCounter--
	}
	if rt {
		c.rtCounter = c.cfg.rtLimit
	} else {
		c.rtCounter--
	}

	if c.t <= c.cfg.robustness {
		return CompressParams{SendMaskFlag: true, UncompressedFlag: true}
	}

	return CompressParams{NewMaskFlag: pt, SendMaskFlag: ft, UncompressedFlag: rt}
}

// CompressPacket encodes one F-bit input vector into its compressed
// packet form, zero-padded to a byte boundary. The returned slice aliases
// the Compressor's internal buffer and is invalidated by the next call.
func (c *Compressor) CompressPacket(input *bitvec.Vector, params *CompressParams) ([]byte, error) {
	if input == nil || input.Len() != c.cfg.f {
		return nil, fmt.Errorf("session.CompressPacket: %w", errs.ErrPacketLength)
	}

	var p CompressParams
	if c.cfg.scheduleEnabled() {
		p = c.scheduledParams()
	} else {
		if params == nil {
			return nil, fmt.Errorf("session.CompressPacket: manual mode requires params: %w", errs.ErrInvalidArgument)
		}
		p = *params
		if c.t <= c.cfg.robustness {
			p.SendMaskFlag, p.UncompressedFlag, p.NewMaskFlag = true, true, false
		}
	}

	c.writer.Reset()
	w := c.writer

	c.prevMask.CopyFrom(c.mask)
	prevMask := c.prevMask
	c.workPrevBuild.CopyFrom(c.build)
	prevBuild := c.workPrevBuild

	if c.t > 0 {
		mask.UpdateBuild(c.build, input, c.prevInput, p.NewMaskFlag, c.t)
		mask.UpdateMask(c.mask, input, c.prevInput, prevBuild, p.NewMaskFlag)
	}

	change := c.workChange
	mask.ComputeChange(change, c.mask, prevMask, c.t)
	c.changeHistory[c.historyIndex].CopyFrom(change)

	xt := c.computeRobustnessWindow(change)
	vt := c.computeEffectiveRobustness()

	dt := !p.SendMaskFlag && !p.UncompressedFlag

	if err := codec.EncodeRLE(w, xt); err != nil {
		return nil, fmt.Errorf("session.CompressPacket: %w", err)
	}
	w.WriteBits(uint64(vt), 4)

	ct := false
	if vt > 0 && xt.HammingWeight() > 0 {
		et := hasPositiveUpdate(xt, c.mask)
		w.WriteBit(boolBit(et))

		if et {
			c.workInvMask.Zero()
			for i := 0; i < c.cfg.f; i++ {
				if c.mask.Bit(i) == 0 {
					c.workInvMask.SetBit(i, 1)
				}
			}
			if err := codec.BitExtractForward(w, c.workInvMask, xt); err != nil {
				return nil, fmt.Errorf("session.CompressPacket: %w", err)
			}

			ct = c.computeCtFlag(vt, p.NewMaskFlag)
			w.WriteBit(boolBit(ct))
		}
	}

	w.WriteBit(boolBit(dt))

	if !dt {
		if p.SendMaskFlag {
			w.WriteBit(1)
			leftShiftInto(c.workMaskShifted, c.mask)
			c.workMaskDiff.XORInto(c.mask, c.workMaskShifted)
			if err := codec.EncodeRLE(w, c.workMaskDiff); err != nil {
				return nil, fmt.Errorf("session.CompressPacket: %w", err)
			}
		} else {
			w.WriteBit(0)
		}
	}

	if p.UncompressedFlag {
		w.WriteBit(1)
		if err := codec.EncodeCount(w, c.cfg.f); err != nil {
			return nil, fmt.Errorf("session.CompressPacket: %w", err)
		}
		w.WriteVector(input)
	} else {
		if !dt {
			w.WriteBit(0)
		}

		var extractMask *bitvec.Vector
		if ct && vt > 0 {
			c.workExtractMask.ORInto(c.mask, xt)
			extractMask = c.workExtractMask
		} else {
			extractMask = c.mask
		}
		if err := codec.BitExtract(w, input, extractMask); err != nil {
			return nil, fmt.Errorf("session.CompressPacket: %w", err)
		}
	}

	c.prevInput.CopyFrom(input)
	c.prevMask.CopyFrom(c.mask)
	c.newMaskHistory[c.flagHistoryIndex] = p.NewMaskFlag
	c.flagHistoryIndex = (c.flagHistoryIndex + 1) % historyDepth
	c.t++
	c.historyIndex = (c.historyIndex + 1) % historyDepth

	return w.Bytes(), nil
}

// computeRobustnessWindow returns Xt = Dt | Dt-1 | ... | Dt-min(t,R).
func (c *Compressor) computeRobustnessWindow(currentChange *bitvec.Vector) *bitvec.Vector {
	xt := c.workXt
	xt.CopyFrom(currentChange)

	if c.cfg.robustness == 0 || c.t == 0 {
		return xt
	}

	numChanges := c.t
	if c.cfg.robustness < numChanges {
		numChanges = c.cfg.robustness
	}

	for i := 1; i <= numChanges; i++ {
		histIdx := (c.historyIndex + historyDepth - i) % historyDepth
		updated := xt.OR(c.changeHistory[histIdx])
		xt.CopyFrom(updated)
	}

	return xt
}

// computeEffectiveRobustness returns Vt = R + Ct per §4.5: for t > R, Ct
// counts zero-change iterations starting at offset R+1 into history, not
// at t-1.
func (c *Compressor) computeEffectiveRobustness() int {
	r := c.cfg.robustness
	if c.t <= r {
		return r
	}

	ct := 0
	maxI := historyDepth - 1
	if c.t < maxI {
		maxI = c.t
	}

	for i := r + 1; i <= maxI; i++ {
		histIdx := (c.historyIndex + historyDepth - i) % historyDepth
		if c.changeHistory[histIdx].HammingWeight() > 0 {
			break
		}
		ct++
		if ct >= 15-r {
			break
		}
	}

	vt := r + ct
	if vt > 15 {
		vt = 15
	}

	return vt
}

// computeCtFlag reports whether new_mask_flag was set at least twice
// within the current packet and the previous Vt packets.
func (c *Compressor) computeCtFlag(vt int, currentNewMask bool) bool {
	if vt == 0 {
		return false
	}

	count := 0
	if currentNewMask {
		count++
	}

	iterations := vt
	if c.t < iterations {
		iterations = c.t
	}

	for i := 0; i < iterations; i++ {
		histIdx := (c.flagHistoryIndex + historyDepth - 1 - i) % historyDepth
		if c.newMaskHistory[histIdx] {
			count++
		}
	}

	return count >= 2
}

// hasPositiveUpdate reports whether any bit marked in xt is currently
// predictable (mask bit 0), the et flag.
func hasPositiveUpdate(xt, mask *bitvec.Vector) bool {
	for i := 0; i < xt.Len(); i++ {
		if xt.Bit(i) != 0 && mask.Bit(i) == 0 {
			return true
		}
	}

	return false
}

// leftShiftInto computes a one-bit left shift of src into dst, word by
// word, big-endian (MSB in the high bits of word 0): used to turn a mask
// into the sparse "mask-boundary" vector Mt XOR (Mt << 1) for qt.
func leftShiftInto(dst, src *bitvec.Vector) {
	var carry uint32
	for i := src.NumWords() - 1; i >= 0; i-- {
		word := src.Word(i)
		dst.SetWord(i, (word<<1)|carry)
		carry = (word >> 31) & 1
	}
}

func boolBit(b bool) int {
	if b {
		return 1
	}

	return 0
}

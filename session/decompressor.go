package session

import (
	"fmt"

	"github.com/stratolink/pocketcodec/bitstream"
	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/codec"
	"github.com/stratolink/pocketcodec/errs"
	"github.com/stratolink/pocketcodec/internal/options"
)

// Decompressor holds the running state of one CCSDS 124.0-B-1 decode
// stream, mirroring a Compressor constructed with the same F, initial
// mask, and R.
type Decompressor struct {
	cfg *Config

	mask       *bitvec.Vector
	prevOutput *bitvec.Vector
	xt         *bitvec.Vector

	t int

	// needsResync is set by NotifyPacketLoss; cleared once a fresh
	// uncompressed packet re-establishes Iₜ₋₁.
	needsResync bool
}

// NewDecompressor constructs a Decompressor for F-bit packets.
func NewDecompressor(f int, opts ...Option) (*Decompressor, error) {
	cfg, err := newConfig(f)
	if err != nil {
		return nil, err
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	d := &Decompressor{cfg: cfg}

	for _, v := range []**bitvec.Vector{&d.mask, &d.prevOutput, &d.xt} {
		vec, err := bitvec.New(f)
		if err != nil {
			return nil, err
		}
		*v = vec
	}

	d.Reset()

	return d, nil
}

// F returns the configured packet width in bits.
func (d *Decompressor) F() int { return d.cfg.f }

// Reset returns the decompressor to t=0, exactly as produced by
// NewDecompressor.
func (d *Decompressor) Reset() {
	d.t = 0
	if d.cfg.initialMask != nil {
		d.mask.CopyFrom(d.cfg.initialMask)
	} else {
		d.mask.Zero()
	}
	d.prevOutput.Zero()
	d.xt.Zero()
	d.needsResync = false
}

// NotifyPacketLoss reports that n consecutive packets were dropped from
// the transport. It advances t and flags the stream as needing resync;
// the next packet decoded with ṙt=1 re-establishes Iₜ₋₁, and recovers Mt
// exactly provided n <= R. Larger gaps may leave the mask transiently
// degraded until a send_mask packet arrives, per the standard's silence
// on loss recovery beyond what robustness buys.
func (d *Decompressor) NotifyPacketLoss(n int) {
	if n <= 0 {
		return
	}
	d.t += n
	d.needsResync = true
}

// DecompressPacket parses one compressed packet from r, returning the
// reconstructed F-bit input vector. r is left positioned immediately
// after the packet's payload; callers that read multiple packets from a
// shared byte stream must call r.AlignByte() before the next call.
func (d *Decompressor) DecompressPacket(r *bitstream.Reader) (*bitvec.Vector, error) {
	if r == nil {
		return nil, fmt.Errorf("session.DecompressPacket: %w", errs.ErrNilBuffer)
	}

	output, err := bitvec.New(d.cfg.f)
	if err != nil {
		return nil, err
	}
	output.CopyFrom(d.prevOutput)
	d.xt.Zero()

	xt, err := codec.DecodeRLE(r, d.cfg.f)
	if err != nil {
		return nil, fmt.Errorf("session.DecompressPacket: Xt: %w", err)
	}

	vtRaw, err := r.ReadBits(4)
	if err != nil {
		return nil, fmt.Errorf("session.DecompressPacket: Vt: %w", err)
	}
	vt := int(vtRaw)

	ct := false
	changeCount := xt.HammingWeight()

	switch {
	case vt > 0 && changeCount > 0:
		et, err := r.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("session.DecompressPacket: et: %w", err)
		}

		if et == 1 {
			for i := 0; i < d.cfg.f; i++ {
				if xt.Bit(i) == 0 {
					continue
				}
				bit, err := r.ReadBit()
				if err != nil {
					return nil, fmt.Errorf("session.DecompressPacket: kt: %w", err)
				}
				if bit != 0 {
					d.mask.SetBit(i, 0)
					d.xt.SetBit(i, 1)
				} else {
					d.mask.SetBit(i, 1)
				}
			}

			ctBit, err := r.ReadBit()
			if err != nil {
				return nil, fmt.Errorf("session.DecompressPacket: ct: %w", err)
			}
			ct = ctBit != 0
		} else {
			for i := 0; i < d.cfg.f; i++ {
				if xt.Bit(i) != 0 {
					d.mask.SetBit(i, 1)
				}
			}
		}
	case vt == 0 && changeCount > 0:
		for i := 0; i < d.cfg.f; i++ {
			if xt.Bit(i) != 0 {
				d.mask.SetBit(i, 1-d.mask.Bit(i))
			}
		}
	}

	dtBit, err := r.ReadBit()
	if err != nil {
		return nil, fmt.Errorf("session.DecompressPacket: dt: %w", err)
	}
	dt := dtBit != 0

	rt := false
	if !dt {
		ft, err := r.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("session.DecompressPacket: ft: %w", err)
		}

		if ft == 1 {
			maskDiff, err := codec.DecodeRLE(r, d.cfg.f)
			if err != nil {
				return nil, fmt.Errorf("session.DecompressPacket: mask: %w", err)
			}

			current := maskDiff.Bit(d.cfg.f - 1)
			d.mask.SetBit(d.cfg.f-1, current)

			for i := d.cfg.f - 1; i > 0; i-- {
				pos := i - 1
				current = maskDiff.Bit(pos) ^ current
				d.mask.SetBit(pos, current)
			}
		}

		rtBit, err := r.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("session.DecompressPacket: rt: %w", err)
		}
		rt = rtBit != 0
	}

	if rt {
		if _, err := codec.DecodeCount(r); err != nil {
			return nil, fmt.Errorf("session.DecompressPacket: length: %w", err)
		}

		for i := 0; i < d.cfg.f; i++ {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, fmt.Errorf("session.DecompressPacket: It bit %d: %w", i, err)
			}
			output.SetBit(i, bit)
		}

		d.needsResync = false
	} else {
		var extractMask *bitvec.Vector
		if ct && vt > 0 {
			extractMask = d.mask.OR(d.xt)
		} else {
			extractMask = d.mask.Clone()
		}

		if err := codec.BitInsert(r, output, extractMask); err != nil {
			return nil, fmt.Errorf("session.DecompressPacket: ut: %w", err)
		}
	}

	d.prevOutput.CopyFrom(output)
	d.t++

	return output, nil
}

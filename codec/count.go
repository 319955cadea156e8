// Package codec implements the entropy coding primitives of CCSDS
// 124.0-B-1 section 5.2: COUNT, RLE built on COUNT, and the BitExtract /
// BitInsert pair that moves the changed-bit payload between a full packet
// and its masked representation.
package codec

import (
	"fmt"
	"math/bits"

	"github.com/stratolink/pocketcodec/bitstream"
	"github.com/stratolink/pocketcodec/errs"
)

// EncodeCount writes A, 1 <= A <= 65535, using the CCSDS Equation 9
// variable-length code:
//
//	A == 1        -> '0'
//	2 <= A <= 33  -> '110' || BIT_5(A-2)
//	A >= 34       -> '111' || BIT_E(A-2), E = 2*floor(log2(A-2)+1) - 6
func EncodeCount(w *bitstream.Writer, a int) error {
	if a < 1 || a > 65535 {
		return fmt.Errorf("codec.EncodeCount(%d): %w", a, errs.ErrCountOverflow)
	}

	switch {
	case a == 1:
		w.WriteBit(0)
	case a <= 33:
		w.WriteBits(0b110, 3)
		w.WriteBits(uint64(a-2), 5)
	default:
		value := a - 2
		e := (2 * bits.Len(uint(value))) - 6
		w.WriteBits(0b111, 3)
		w.WriteBits(uint64(value), e)
	}

	return nil
}

// EncodeCountTerminator writes the RLE terminator pattern '10'.
func EncodeCountTerminator(w *bitstream.Writer) {
	w.WriteBits(0b10, 2)
}

// DecodeCount reads one COUNT-coded value, returning 0 for the RLE
// terminator and 1..65535 otherwise.
func DecodeCount(r *bitstream.Reader) (int, error) {
	first, err := r.ReadBit()
	if err != nil {
		return 0, fmt.Errorf("codec.DecodeCount: %w", err)
	}
	if first == 0 {
		return 1, nil
	}

	second, err := r.ReadBit()
	if err != nil {
		return 0, fmt.Errorf("codec.DecodeCount: %w", err)
	}
	if second == 0 {
		return 0, nil
	}

	third, err := r.ReadBit()
	if err != nil {
		return 0, fmt.Errorf("codec.DecodeCount: %w", err)
	}
	if third == 0 {
		value, err := r.ReadBits(5)
		if err != nil {
			return 0, fmt.Errorf("codec.DecodeCount BIT_5: %w", err)
		}

		return int(value) + 2, nil
	}

	// '111' prefix: E grows in steps of 2 until the value's own bit
	// length confirms how many bits were meant to be read.
	e := 6
	value, err := r.ReadBits(e)
	if err != nil {
		return 0, fmt.Errorf("codec.DecodeCount BIT_E: %w", err)
	}

	for {
		expectedE := 0
		if value != 0 {
			expectedE = 2*(bits.Len64(value)) - 6
		}
		if expectedE == e {
			break
		}

		e += 2
		extra, err := r.ReadBits(2)
		if err != nil {
			return 0, fmt.Errorf("codec.DecodeCount extra bits: %w", err)
		}
		value = (value << 2) | extra
	}

	return int(value) + 2, nil
}

package codec

import (
	"fmt"

	"github.com/stratolink/pocketcodec/bitstream"
	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/errs"
)

// debruijnLookup maps a De Bruijn-multiplied isolated-LSB word to one plus
// the index of its set bit (1-32), using the standard 0x077CB531 32-bit De
// Bruijn sequence.
var debruijnLookup = [32]int{
	1, 2, 29, 3, 30, 15, 25, 4, 31, 23, 21, 16,
	26, 18, 5, 9, 32, 28, 14, 24, 22, 20, 17, 8,
	27, 13, 19, 7, 12, 6, 11, 10,
}

// EncodeRLE writes CCSDS Equation 10's run-length code for a change
// vector: RLE(a) = COUNT(C_0) || ... || COUNT(C_{H(a)-1}) || '10', where
// each C_i is the gap between consecutive set bits counting from the
// vector's end. Trailing zero bits are never encoded; they are recovered
// from the known vector length during decode.
func EncodeRLE(w *bitstream.Writer, input *bitvec.Vector) error {
	if input == nil {
		return fmt.Errorf("codec.EncodeRLE: %w", errs.ErrNilBuffer)
	}

	oldPos := input.Len()

	for word := input.NumWords() - 1; word >= 0; word-- {
		wordData := input.Word(word)

		for wordData != 0 {
			lsb := wordData & uint32(-int32(wordData))

			debruijnIndex := (lsb * 0x077CB531) >> 27
			bitPosInWord := 32 - debruijnLookup[debruijnIndex]

			newPos := (word * 32) + bitPosInWord
			delta := oldPos - newPos

			if err := EncodeCount(w, delta); err != nil {
				return fmt.Errorf("codec.EncodeRLE: %w", err)
			}

			oldPos = newPos
			wordData ^= lsb
		}
	}

	EncodeCountTerminator(w)

	return nil
}

// DecodeRLE reads an RLE-coded change vector of the given bit length.
func DecodeRLE(r *bitstream.Reader, length int) (*bitvec.Vector, error) {
	result, err := bitvec.New(length)
	if err != nil {
		return nil, fmt.Errorf("codec.DecodeRLE: %w", err)
	}

	position := length

	for {
		count, err := DecodeCount(r)
		if err != nil {
			return nil, fmt.Errorf("codec.DecodeRLE: %w", err)
		}
		if count == 0 {
			break
		}

		position -= count
		if position >= 0 {
			result.SetBit(position, 1)
		}
	}

	return result, nil
}

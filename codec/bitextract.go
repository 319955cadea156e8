package codec

import (
	"fmt"
	"math/bits"

	"github.com/stratolink/pocketcodec/bitstream"
	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/errs"
)

func checkSameLength(data, mask *bitvec.Vector, who string) error {
	if data == nil || mask == nil {
		return fmt.Errorf("codec.%s: %w", who, errs.ErrNilBuffer)
	}
	if data.Len() != mask.Len() {
		return fmt.Errorf("codec.%s: %w", who, errs.ErrPacketLength)
	}

	return nil
}

// BitExtract implements CCSDS Equation 11, BE(a, b): the bits of data at
// the positions where mask is set, emitted from the highest set position
// to the lowest. This is the extraction order used for the compressed
// payload ut.
func BitExtract(w *bitstream.Writer, data, mask *bitvec.Vector) error {
	if err := checkSameLength(data, mask, "BitExtract"); err != nil {
		return err
	}

	for wi := mask.NumWords() - 1; wi >= 0; wi-- {
		maskWord := mask.Word(wi)
		if maskWord == 0 {
			continue
		}
		dataWord := data.Word(wi)

		for maskWord != 0 {
			lsb := maskWord & uint32(-int32(maskWord))
			bitPos := bits.TrailingZeros32(lsb)
			w.WriteBit(int((dataWord >> uint(bitPos)) & 1))
			maskWord ^= lsb
		}
	}

	return nil
}

// BitExtractForward is BitExtract with the opposite traversal order,
// lowest set position to highest. This is the order CCSDS requires for
// the kt polarity component, the one part of the wire format that is not
// emitted high-to-low.
func BitExtractForward(w *bitstream.Writer, data, mask *bitvec.Vector) error {
	if err := checkSameLength(data, mask, "BitExtractForward"); err != nil {
		return err
	}

	for wi := 0; wi < mask.NumWords(); wi++ {
		maskWord := mask.Word(wi)
		if maskWord == 0 {
			continue
		}
		dataWord := data.Word(wi)

		for maskWord != 0 {
			highBit := 31 - bits.LeadingZeros32(maskWord)
			w.WriteBit(int((dataWord >> uint(highBit)) & 1))
			maskWord &^= uint32(1) << uint(highBit)
		}
	}

	return nil
}

// BitInsert is the decode-side inverse of BitExtract: it reads bits from
// r and writes them into data at the positions mask marks, in the same
// highest-to-lowest order BitExtract used.
func BitInsert(r *bitstream.Reader, data, mask *bitvec.Vector) error {
	if err := checkSameLength(data, mask, "BitInsert"); err != nil {
		return err
	}

	for wi := mask.NumWords() - 1; wi >= 0; wi-- {
		maskWord := mask.Word(wi)
		if maskWord == 0 {
			continue
		}

		for maskWord != 0 {
			lsb := maskWord & uint32(-int32(maskWord))
			bitPos := bits.TrailingZeros32(lsb)

			bit, err := r.ReadBit()
			if err != nil {
				return fmt.Errorf("codec.BitInsert: %w", err)
			}
			data.SetWordBit(wi, bitPos, bit)

			maskWord ^= lsb
		}
	}

	return nil
}

// BitInsertForward is the decode-side inverse of BitExtractForward.
func BitInsertForward(r *bitstream.Reader, data, mask *bitvec.Vector) error {
	if err := checkSameLength(data, mask, "BitInsertForward"); err != nil {
		return err
	}

	for wi := 0; wi < mask.NumWords(); wi++ {
		maskWord := mask.Word(wi)
		if maskWord == 0 {
			continue
		}

		for maskWord != 0 {
			highBit := 31 - bits.LeadingZeros32(maskWord)

			bit, err := r.ReadBit()
			if err != nil {
				return fmt.Errorf("codec.BitInsertForward: %w", err)
			}
			data.SetWordBit(wi, highBit, bit)

			maskWord &^= uint32(1) << uint(highBit)
		}
	}

	return nil
}

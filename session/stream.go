package session

import (
	"fmt"

	"github.com/stratolink/pocketcodec/bitstream"
	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/errs"
)

// Compress is the multi-packet convenience wrapper: input must be a
// sequence of whole F-bit frames (len(input) a multiple of ceil(F/8)).
// Packets are emitted with automatic flag scheduling; in manual mode
// (no schedule configured) use CompressPacket directly instead.
func (c *Compressor) Compress(input []byte) ([]byte, error) {
	frameBytes := (c.cfg.f + 7) / 8
	if frameBytes == 0 || len(input)%frameBytes != 0 {
		return nil, fmt.Errorf("session.Compress: input length %d not a multiple of frame size %d: %w", len(input), frameBytes, errs.ErrPacketLength)
	}
	if !c.cfg.scheduleEnabled() {
		return nil, fmt.Errorf("session.Compress: %w", errs.ErrInvalidArgument)
	}

	vec, err := bitvec.New(c.cfg.f)
	if err != nil {
		return nil, err
	}

	var out []byte
	for offset := 0; offset < len(input); offset += frameBytes {
		vec.FromBytes(input[offset : offset+frameBytes])

		packet, err := c.CompressPacket(vec, nil)
		if err != nil {
			return out, err
		}
		out = append(out, packet...)
	}

	return out, nil
}

// Decompress is the multi-packet convenience wrapper, the inverse of
// Compress: data is a concatenation of byte-aligned compressed packets,
// totalBits the exact bit length of the valid payload within data (the
// final byte may be padding).
func (d *Decompressor) Decompress(data []byte, totalBits int) ([]byte, error) {
	r := bitstream.NewReaderBits(data, totalBits)
	frameBytes := (d.cfg.f + 7) / 8

	var out []byte
	for r.Remaining() > 0 {
		vec, err := d.DecompressPacket(r)
		if err != nil {
			return out, err
		}

		bytes := vec.ToBytes()
		if len(bytes) < frameBytes {
			padded := make([]byte, frameBytes)
			copy(padded, bytes)
			bytes = padded
		}
		out = append(out, bytes[:frameBytes]...)

		r.AlignByte()
	}

	return out, nil
}

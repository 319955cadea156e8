// Package pocketcodec implements the CCSDS 124.0-B-1 POCKET+ lossless
// compression algorithm for fixed-length spacecraft housekeeping packets.
//
// POCKET+ compresses a stream of same-size telemetry frames by tracking,
// per bit position, whether that bit has changed recently (the "mask")
// and transmitting only the bits the mask says are live, alongside
// periodic uncompressed and mask-refresh packets that bound how long a
// receiver can stay desynchronized. See spec §1-§9 for the full wire
// format; this package's core layers live in bitvec, bitstream, codec,
// mask, and session.
//
// # Core Features
//
//   - Bit-exact CCSDS 124.0-B-1 wire format, byte-aligned per packet
//   - Configurable robustness window (0-7) trading recovery speed for rate
//   - Automatic countdown-counter flag scheduling, or fully manual control
//   - Pooled packet output buffer and per-stream state vectors allocated
//     once; each packet still allocates temporary vectors during the mask
//     and robustness-window updates, so compression is not allocation-free
//   - Loss-tolerant transport framing (xxHash64-checksummed, sequence-gap
//     detection) and an archival container format for downlink bundling
//
// # Basic Usage
//
//	import "github.com/stratolink/pocketcodec"
//
//	compressed, err := pocketcodec.Compress(frames, 90, 1, 10, 20, 50)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	restored, err := pocketcodec.Decompress(compressed, 90, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For fine-grained control over per-packet flag scheduling, loss
// recovery, or an initial mask, construct a session.Compressor or
// session.Decompressor directly; the wrappers here cover the common
// whole-stream case.
package pocketcodec

import (
	"github.com/stratolink/pocketcodec/session"
)

// Compress encodes input, a sequence of frameBytes-sized packets
// concatenated together, using automatic flag scheduling with the given
// countdown limits. robustness sets the change-history window (0-7);
// ptLimit, ftLimit, and rtLimit set the new-mask, send-mask, and
// uncompressed packet periods respectively and must all be positive.
func Compress(input []byte, frameBytes, robustness, ptLimit, ftLimit, rtLimit int) ([]byte, error) {
	comp, err := session.NewCompressor(
		frameBytes*8,
		session.WithRobustness(robustness),
		session.WithSchedule(ptLimit, ftLimit, rtLimit),
	)
	if err != nil {
		return nil, err
	}
	defer comp.Release()

	return comp.Compress(input)
}

// Decompress reverses Compress: data is a byte-aligned concatenation of
// POCKET+ packets, frameBytes the original per-packet size, and
// robustness must match the value used to compress.
func Decompress(data []byte, frameBytes, robustness int) ([]byte, error) {
	decomp, err := session.NewDecompressor(frameBytes*8, session.WithRobustness(robustness))
	if err != nil {
		return nil, err
	}

	return decomp.Decompress(data, len(data)*8)
}

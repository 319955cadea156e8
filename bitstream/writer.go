// Package bitstream provides the MSB-first bit-level writer and reader that
// every packet's hidden header ḣt, qt, and ut sections are assembled with
// and parsed from.
//
// Bits accumulate in a 64-bit shift register before spilling into a pooled
// byte buffer, so appending a handful of flag bits costs no allocation.
package bitstream

import (
	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/internal/pool"
)

// Writer builds a byte-aligned, MSB-first bitstream.
type Writer struct {
	buf     *pool.ByteBuffer
	owned   bool
	numBits int

	acc    uint64
	accLen int
}

// NewWriter creates a Writer backed by a pooled packet buffer. Release
// returns the buffer to the pool; callers that need to keep the bytes past
// Release should copy Bytes() first.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetPacketBuffer(), owned: true}
}

// NewWriterWithBuffer builds a Writer over a caller-supplied buffer. The
// caller, not Release, owns bb's lifecycle.
func NewWriterWithBuffer(bb *pool.ByteBuffer) *Writer {
	return &Writer{buf: bb}
}

// Release returns the backing buffer to its pool, if this Writer owns one.
// The Writer must not be used afterward.
func (w *Writer) Release() {
	if w.owned {
		pool.PutPacketBuffer(w.buf)
	}
}

// Reset clears the writer for reuse, keeping its backing storage.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.numBits = 0
	w.acc = 0
	w.accLen = 0
}

// NumBits returns the number of bits written so far.
func (w *Writer) NumBits() int { return w.numBits }

func (w *Writer) flush() {
	for w.accLen >= 8 {
		w.accLen -= 8
		w.buf.MustWrite([]byte{byte(w.acc >> uint(w.accLen))})
		w.acc &= (1 << uint(w.accLen)) - 1
	}
}

// WriteBit appends a single bit (0 or nonzero treated as 1).
func (w *Writer) WriteBit(bit int) {
	w.acc = (w.acc << 1) | uint64(bit&1)
	w.accLen++
	w.numBits++

	if w.accLen >= 8 {
		w.flush()
	}
}

// WriteBits appends the low n bits of value, MSB-first. n must be in
// [0, 64]; the widest field this codec writes is a 26-bit COUNT payload.
func (w *Writer) WriteBits(value uint64, n int) {
	if n <= 0 {
		return
	}
	if n > 32 {
		w.WriteBits(value>>32, n-32)
		value &= 0xFFFFFFFF
		n = 32
	}

	mask := uint64((1 << uint(n)) - 1)
	w.acc = (w.acc << uint(n)) | (value & mask)
	w.accLen += n
	w.numBits += n

	if w.accLen >= 8 {
		w.flush()
	}
}

// WriteVector appends all bits of v in order.
func (w *Writer) WriteVector(v *bitvec.Vector) {
	n := v.Len()
	for i := 0; i < n; i++ {
		w.WriteBit(v.Bit(i))
	}
}

// WriteVectorN appends the first n bits of v (or all of v, if shorter).
func (w *Writer) WriteVectorN(v *bitvec.Vector, n int) {
	if n > v.Len() {
		n = v.Len()
	}
	for i := 0; i < n; i++ {
		w.WriteBit(v.Bit(i))
	}
}

// Bytes flushes any partial trailing byte (zero-padded, per the per-packet
// byte alignment oṫ requires) and returns the accumulated bytes. The
// returned slice aliases the Writer's internal buffer and is invalidated
// by the next write or by Release.
func (w *Writer) Bytes() []byte {
	if w.numBits == 0 {
		return nil
	}

	if w.accLen > 0 {
		pad := 8 - w.accLen
		w.acc <<= uint(pad)
		w.accLen = 8
		w.flush()
	}

	return w.buf.Bytes()
}

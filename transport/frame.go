// Package transport frames compressed packets for a lossy link: each
// frame carries its payload length and an xxHash64 checksum so a reader
// can detect corruption and, paired with a sequence counter, detect the
// packet drops session.Decompressor.NotifyPacketLoss expects to hear
// about. Framing is an external collaborator to the core codec (CCSDS
// 124.0-B-1 defines no transport layer), not part of the wire format
// itself.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/stratolink/pocketcodec/errs"
)

// headerSize is 4 bytes sequence + 4 bytes length + 8 bytes checksum.
const headerSize = 4 + 4 + 8

// Writer emits length- and checksum-framed packets to an underlying
// io.Writer, stamping each with an incrementing sequence number a Reader
// uses to detect gaps.
type Writer struct {
	w   io.Writer
	seq uint32
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Seq returns the sequence number the next WriteFrame call will use.
func (fw *Writer) Seq() uint32 { return fw.seq }

// SetSeq overrides the next sequence number, e.g. when resuming a
// session or deliberately skipping a number to simulate a drop.
func (fw *Writer) SetSeq(seq uint32) { fw.seq = seq }

// WriteFrame writes one framed packet and advances the sequence counter.
func (fw *Writer) WriteFrame(payload []byte) error {
	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[0:4], fw.seq)
	binary.BigEndian.PutUint32(header[4:8], uint32(len(payload)))
	binary.BigEndian.PutUint64(header[8:16], xxhash.Sum64(payload))

	if _, err := fw.w.Write(header[:]); err != nil {
		return fmt.Errorf("transport: write frame header: %w", err)
	}
	if _, err := fw.w.Write(payload); err != nil {
		return fmt.Errorf("transport: write frame payload: %w", err)
	}

	fw.seq++

	return nil
}

// Frame is one decoded frame: its sequence number and verified payload.
type Frame struct {
	Seq     uint32
	Payload []byte
}

// Reader reads frames written by a Writer, verifying each checksum and
// tracking the sequence counter to detect dropped frames.
type Reader struct {
	r        io.Reader
	expected uint32
	started  bool
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFrame reads the next frame. It returns io.EOF when the underlying
// reader is exhausted between frames. Gap reports how many frames were
// skipped before this one, as judged by the sequence counter; a caller
// wiring this into session.Decompressor should call NotifyPacketLoss(gap)
// before decoding this frame's payload.
func (fr *Reader) ReadFrame() (frame Frame, gap int, err error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(fr.r, header[:]); err != nil {
		if err == io.EOF {
			return Frame{}, 0, io.EOF
		}

		return Frame{}, 0, fmt.Errorf("transport: read frame header: %w", err)
	}

	seq := binary.BigEndian.Uint32(header[0:4])
	length := binary.BigEndian.Uint32(header[4:8])
	checksum := binary.BigEndian.Uint64(header[8:16])

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		return Frame{}, 0, fmt.Errorf("transport: read frame payload: %w", err)
	}

	if xxhash.Sum64(payload) != checksum {
		return Frame{}, 0, fmt.Errorf("transport: frame %d: %w", seq, errs.ErrDecodeMalformed)
	}

	if fr.started {
		gap = int(seq - fr.expected)
	}
	fr.expected = seq + 1
	fr.started = true

	return Frame{Seq: seq, Payload: payload}, gap, nil
}

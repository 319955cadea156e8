// Package errs defines the sentinel error taxonomy shared by every
// pocketcodec package. Callers distinguish failure classes with
// errors.Is against these sentinels; concrete errors wrap one of them
// with fmt.Errorf("...: %w", ...) so context survives the check.
package errs

import "errors"

// Argument errors: a caller passed a value the API cannot accept
// regardless of session state (bad robustness, mismatched packet
// length, nil buffers).
var (
	ErrInvalidArgument  = errors.New("pocketcodec: invalid argument")
	ErrPacketLength     = errors.New("pocketcodec: packet length does not match configured frame length")
	ErrRobustnessWindow = errors.New("pocketcodec: robustness window out of range")
	ErrNilBuffer        = errors.New("pocketcodec: nil buffer")
)

// Overflow errors: an encoder produced, or a configuration implies, a
// value wider than its wire-format field can hold.
var (
	ErrOverflow           = errors.New("pocketcodec: value overflows its encoded field width")
	ErrRobustnessOverflow = errors.New("pocketcodec: effective robustness exceeds the 4-bit field ceiling")
	ErrCountOverflow      = errors.New("pocketcodec: run count exceeds COUNT encoding capacity")
)

// Underflow errors: a reader ran out of bits or bytes before the
// structure it was parsing was complete.
var (
	ErrUnderflow       = errors.New("pocketcodec: insufficient bits remaining")
	ErrShortBuffer     = errors.New("pocketcodec: buffer shorter than required")
	ErrTruncatedStream = errors.New("pocketcodec: stream ended mid-packet")
)

// Decode errors: the bitstream was well-formed in length but its
// contents violate a structural invariant of the wire format.
var (
	ErrDecodeMalformed       = errors.New("pocketcodec: malformed packet encoding")
	ErrMaskStateMissing      = errors.New("pocketcodec: change mask referenced before any new-mask packet was seen")
	ErrSequenceDiscontinuity = errors.New("pocketcodec: packet sequence discontinuity without loss notification")
	ErrUnsupportedVersion    = errors.New("pocketcodec: unsupported wire format version")
)

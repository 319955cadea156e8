package session

import (
	"fmt"

	"github.com/stratolink/pocketcodec/bitvec"
	"github.com/stratolink/pocketcodec/errs"
	"github.com/stratolink/pocketcodec/internal/options"
)

// MaxRobustness is the largest robustness R that WithRobustness accepts.
// The effective robustness Vt = R + Ct travels in a 4-bit field and is
// capped at 15.
const MaxRobustness = 7

// Config holds the configuration shared by a Compressor and a
// Decompressor constructed against the same F, initial mask, and
// robustness, so the pair can be relied on to track identical state in
// the absence of packet loss.
type Config struct {
	f           int
	robustness  int
	ptLimit     int
	ftLimit     int
	rtLimit     int
	initialMask *bitvec.Vector
}

func newConfig(f int) (*Config, error) {
	if f <= 0 || f > 65535 {
		return nil, fmt.Errorf("session: F=%d: %w", f, errs.ErrInvalidArgument)
	}

	return &Config{f: f}, nil
}

// Option configures a Compressor or Decompressor at construction time.
type Option = options.Option[*Config]

// WithRobustness sets R, 0-7: how many recent change vectors are ORed
// into Xt, and so how many consecutive dropped packets a decoder can miss
// and still rebuild its mask exactly from the next uncompressed packet.
func WithRobustness(r int) Option {
	return options.New(func(c *Config) error {
		if r < 0 || r > MaxRobustness {
			return fmt.Errorf("session.WithRobustness(%d): %w", r, errs.ErrRobustnessWindow)
		}
		c.robustness = r

		return nil
	})
}

// WithSchedule enables automatic flag scheduling with the given countdown
// limits for new_mask, send_mask, and uncompressed packets respectively.
// Automatic mode needs all three limits positive; if any limit is 0 the
// compressor is in manual mode and every flag comes from CompressPacket's
// params argument.
func WithSchedule(ptLimit, ftLimit, rtLimit int) Option {
	return options.New(func(c *Config) error {
		if ptLimit < 0 || ftLimit < 0 || rtLimit < 0 {
			return fmt.Errorf("session.WithSchedule: %w", errs.ErrInvalidArgument)
		}
		c.ptLimit = ptLimit
		c.ftLimit = ftLimit
		c.rtLimit = rtLimit

		return nil
	})
}

// WithInitialMask seeds M0 from a big-endian byte slice instead of the
// all-zero default. len(mask)*8 must be at least F.
func WithInitialMask(mask []byte) Option {
	return options.New(func(c *Config) error {
		v, err := bitvec.New(c.f)
		if err != nil {
			return err
		}
		v.FromBytes(mask)
		c.initialMask = v

		return nil
	})
}

// scheduleEnabled reports whether all three countdown limits are set,
// putting the compressor in automatic mode. Any limit left at 0 means the
// caller must supply CompressParams for every packet.
func (c *Config) scheduleEnabled() bool {
	return c.ptLimit > 0 && c.ftLimit > 0 && c.rtLimit > 0
}

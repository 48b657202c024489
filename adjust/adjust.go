// Package adjust remaps pixel intensities: saturation, contrast and brightness.
//
// Every adjuster takes a level in [Min, Max]. Base is the identity: a level of
// Base returns the input buffer itself without copying. Levels above Base
// strengthen the effect, levels below weaken it.
package adjust

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pixelkit/images"
)

const (
	// Min is the lowest adjustment level.
	Min = 0
	// Max is the highest adjustment level.
	Max = 255
	// Base is the identity level.
	Base = (Min + Max) >> 1
)

// ErrLevelOutOfRange is returned for levels outside [Min, Max].
var ErrLevelOutOfRange = errors.New("adjust: level out of range")

func validate(b *images.Buffer, level int) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if level < Min || level > Max {
		return errors.Wrapf(ErrLevelOutOfRange, "level %d not in [%d,%d]", level, Min, Max)
	}
	return nil
}

// Contrast stretches or compresses samples around the midpoint of the global
// sample range.
//
// The buffer is scanned once for the global min and max across all channels,
// mid = (max+min)/2. Above Base the gain is Base/(Max-level), with Max treated
// as Max-1; below Base it is level/Base. Each sample becomes a*v + mid*(1-a).
// Results are not clamped.
//
// Arguments:
// - b: The buffer to adjust. It is not modified.
// - level: Adjustment level in [Min, Max].
//
// Returns:
// - A new buffer, or b itself when level == Base.
//
// @example
// punchy, err := adjust.Contrast(frame, 200)
func Contrast(b *images.Buffer, level int) (*images.Buffer, error) {
	if err := validate(b, level); err != nil {
		return &images.Buffer{}, err
	}
	if level == Base {
		return b, nil
	}

	lo, hi := b.MinMax()
	mid := (hi + lo) / 2

	var a float64
	if level > Base {
		if level == Max {
			level--
		}
		a = float64(Base) / float64(Max-level)
	} else {
		a = float64(level) / Base
	}
	offset := mid * (1 - a)

	out := b.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = a*v + offset
	}
	return out, nil
}

// Brightness darkens or inverts-and-scales samples.
//
// Above Base: f = (Max-level)/Base and v' = 255 - v*f. Below Base:
// f = level/Base and v' = v*f.
func Brightness(b *images.Buffer, level int) (*images.Buffer, error) {
	if err := validate(b, level); err != nil {
		return &images.Buffer{}, err
	}
	if level == Base {
		return b, nil
	}

	out := b.Clone()
	if level > Base {
		f := float64(Max-level) / Base
		for i, v := range out.Pix {
			out.Pix[i] = images.MaxSample - v*f
		}
		return out, nil
	}

	f := float64(level) / Base
	for i, v := range out.Pix {
		out.Pix[i] = v * f
	}
	return out, nil
}

// Package images - pixel buffer definition shared by every transform.
//
// A Buffer is a row-major grid of Width x Height pixels, each pixel holding
// Channels float64 samples. Color buffers store samples in BGR order so they
// round-trip through gocv without swizzling. Samples are nominally in [0,255]
// but may leave that range while a transform chain runs; see Clamp.
package images

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

const (
	// MinSample is the lowest valid sample value.
	MinSample = 0.0
	// MaxSample is the highest valid sample value.
	MaxSample = 255.0
)

var (
	// ErrEmptyBuffer is returned when a transform receives a nil or zero-area buffer.
	ErrEmptyBuffer = errors.New("images: empty buffer")
	// ErrChannelMismatch is returned when two buffers or a buffer and a
	// primitive disagree on the channel count.
	ErrChannelMismatch = errors.New("images: channel count mismatch")
)

// Buffer represents an image as raw per-pixel samples.
type Buffer struct {
	// Width is the number of pixels in a row.
	Width int `json:"width" yaml:"width"`
	// Height is the number of rows.
	Height int `json:"height" yaml:"height"`
	// Channels is the number of samples per pixel (1 for gray, 3 for BGR).
	Channels int `json:"channels" yaml:"channels"`
	// Pix holds Height*Width*Channels samples, row-major and channel-interleaved.
	Pix []float64 `json:"-" yaml:"-"`
}

// NewBuffer allocates a zero-filled buffer.
//
// Arguments:
// - width: Number of columns.
// - height: Number of rows.
// - channels: Samples per pixel.
//
// Returns:
// - A buffer with all samples set to zero. Non-positive dimensions yield an
// empty buffer.
//
// @example
// buf := NewBuffer(640, 480, 3)
func NewBuffer(width, height, channels int) *Buffer {
	if width <= 0 || height <= 0 || channels <= 0 {
		return &Buffer{}
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float64, width*height*channels),
	}
}

// NewUniform allocates a buffer with every sample set to v.
func NewUniform(width, height, channels int, v float64) *Buffer {
	b := NewBuffer(width, height, channels)
	for i := range b.Pix {
		b.Pix[i] = v
	}
	return b
}

// Empty reports whether b is nil or has no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0 || b.Channels <= 0 ||
		len(b.Pix) < b.Width*b.Height*b.Channels
}

// Validate returns ErrEmptyBuffer when b cannot be processed.
func (b *Buffer) Validate() error {
	if b.Empty() {
		return ErrEmptyBuffer
	}
	return nil
}

// Bounds returns the pixel rectangle covered by the buffer.
func (b *Buffer) Bounds() image.Rectangle {
	if b == nil {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, b.Width, b.Height)
}

// In reports whether (x, y) lies inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Offset returns the index in Pix of the first sample of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// At returns sample c of pixel (x, y).
func (b *Buffer) At(x, y, c int) float64 {
	return b.Pix[b.Offset(x, y)+c]
}

// Set stores v as sample c of pixel (x, y).
func (b *Buffer) Set(x, y, c int, v float64) {
	b.Pix[b.Offset(x, y)+c] = v
}

// Pixel returns the samples of pixel (x, y). The slice aliases Pix.
func (b *Buffer) Pixel(x, y int) []float64 {
	off := b.Offset(x, y)
	return b.Pix[off : off+b.Channels : off+b.Channels]
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	out := &Buffer{Width: b.Width, Height: b.Height, Channels: b.Channels}
	out.Pix = make([]float64, len(b.Pix))
	copy(out.Pix, b.Pix)
	return out
}

// SameShape reports whether b and o have identical dimensions and channel counts.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height && b.Channels == o.Channels
}

// MinMax scans every sample of every channel once and returns the global extremes.
func (b *Buffer) MinMax() (lo, hi float64) {
	if b.Empty() {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range b.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Clamp limits every sample to [MinSample, MaxSample] in place and returns b.
func (b *Buffer) Clamp() *Buffer {
	if b == nil {
		return nil
	}
	for i, v := range b.Pix {
		b.Pix[i] = ClampSample(v)
	}
	return b
}

// ClampSample limits v to [MinSample, MaxSample]. NaN maps to MinSample.
func ClampSample(v float64) float64 {
	switch {
	case math.IsNaN(v), v < MinSample:
		return MinSample
	case v > MaxSample:
		return MaxSample
	default:
		return v
	}
}

// Crop copies the pixels inside r into a new buffer. r is clipped to the
// buffer bounds; a crop with no area returns an empty buffer and ErrEmptyBuffer.
func (b *Buffer) Crop(r image.Rectangle) (*Buffer, error) {
	if b.Empty() {
		return &Buffer{}, ErrEmptyBuffer
	}
	r = r.Canon().Intersect(b.Bounds())
	if r.Empty() {
		return &Buffer{}, errors.Wrapf(ErrEmptyBuffer, "crop %v outside %dx%d", r, b.Width, b.Height)
	}
	out := NewBuffer(r.Dx(), r.Dy(), b.Channels)
	rowLen := r.Dx() * b.Channels
	for y := 0; y < r.Dy(); y++ {
		src := b.Offset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*rowLen:(y+1)*rowLen], b.Pix[src:src+rowLen])
	}
	return out, nil
}

// Transpose returns a new buffer with rows and columns swapped.
func (b *Buffer) Transpose() *Buffer {
	if b.Empty() {
		return &Buffer{}
	}
	out := NewBuffer(b.Height, b.Width, b.Channels)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			copy(out.Pixel(y, x), b.Pixel(x, y))
		}
	}
	return out
}

// Channel extracts channel c into a single-channel buffer.
func (b *Buffer) Channel(c int) (*Buffer, error) {
	if b.Empty() {
		return &Buffer{}, ErrEmptyBuffer
	}
	if c < 0 || c >= b.Channels {
		return &Buffer{}, errors.Wrapf(ErrChannelMismatch, "channel %d of %d", c, b.Channels)
	}
	out := NewBuffer(b.Width, b.Height, 1)
	for i := range out.Pix {
		out.Pix[i] = b.Pix[i*b.Channels+c]
	}
	return out, nil
}

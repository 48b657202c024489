// Package dehaze removes haze with a simplified dark-channel prior.
//
// The airlight is the fixed constant Airlight rather than an estimate taken
// from the brightest dark-channel pixels, and transmission is not refined.
// Treat this as a deliberate narrowing of the classical algorithm.
package dehaze

import (
	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/nvr-ai/go-pixelkit/images/kernels"
)

const (
	// Airlight is the assumed ambient light intensity.
	Airlight = 127.0
	// MaxDensity caps the haze density f = dark/255 so that 1-f never reaches zero.
	MaxDensity = 0.99
)

// DarkChannel computes the per-pixel minimum across channels and erodes that
// map with a cellSize window clipped to the buffer.
//
// Arguments:
// - b: The buffer to analyze.
// - cellSize: Erosion window side, normalized to odd.
//
// Returns:
// - A single-channel buffer with b's dimensions. For samples in [0,255] every
// value is in [0,255].
func DarkChannel(b *images.Buffer, cellSize int) (*images.Buffer, error) {
	if err := b.Validate(); err != nil {
		return &images.Buffer{}, err
	}

	mins := images.NewBuffer(b.Width, b.Height, 1)
	for i := range mins.Pix {
		px := b.Pix[i*b.Channels : (i+1)*b.Channels]
		m := px[0]
		for _, v := range px[1:] {
			if v < m {
				m = v
			}
		}
		mins.Pix[i] = m
	}
	return kernels.MinFilter(mins, cellSize)
}

// Dehaze applies v' = (v - Airlight*f) / (1 - f) to every sample, where
// f = dark/255 is the pixel's dark-channel value scaled to [0,1] and capped at
// MaxDensity. Results are not clamped.
//
// @example
// clear, err := dehaze.Dehaze(frame, 15)
func Dehaze(b *images.Buffer, cellSize int) (*images.Buffer, error) {
	dark, err := DarkChannel(b, cellSize)
	if err != nil {
		return &images.Buffer{}, err
	}

	out := images.NewBuffer(b.Width, b.Height, b.Channels)
	for i, d := range dark.Pix {
		f := Density(d)
		off := i * b.Channels
		for c := 0; c < b.Channels; c++ {
			out.Pix[off+c] = (b.Pix[off+c] - Airlight*f) / (1 - f)
		}
	}
	return out, nil
}

// Density maps a dark-channel value to the haze density used by Dehaze.
func Density(dark float64) float64 {
	f := dark / images.MaxSample
	switch {
	case f > MaxDensity:
		return MaxDensity
	case f < 0:
		return 0
	}
	return f
}

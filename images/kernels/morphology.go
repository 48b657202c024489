package kernels

import (
	"github.com/nvr-ai/go-pixelkit/images"
)

// MinFilter erodes src with a square window of side cellSize: every output
// sample is the minimum of the same channel over the window, clipped to the
// buffer. A rectangle minimum is separable, so the filter runs as a
// horizontal pass followed by a vertical pass.
func MinFilter(src *images.Buffer, cellSize int) (*images.Buffer, error) {
	if err := src.Validate(); err != nil {
		return &images.Buffer{}, err
	}
	size := NormalizeCellSize(cellSize)
	if size == 1 {
		return src.Clone(), nil
	}
	half := size >> 1
	w, h, ch := src.Width, src.Height, src.Channels

	rows := images.NewBuffer(w, h, ch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, x1 := clip(x-half, w), clip(x+half+1, w)
			out := rows.Pixel(x, y)
			copy(out, src.Pixel(x0, y))
			for sx := x0 + 1; sx < x1; sx++ {
				minInto(out, src.Pixel(sx, y))
			}
		}
	}

	dst := images.NewBuffer(w, h, ch)
	for y := 0; y < h; y++ {
		y0, y1 := clip(y-half, h), clip(y+half+1, h)
		for x := 0; x < w; x++ {
			out := dst.Pixel(x, y)
			copy(out, rows.Pixel(x, y0))
			for sy := y0 + 1; sy < y1; sy++ {
				minInto(out, rows.Pixel(x, sy))
			}
		}
	}
	return dst, nil
}

func minInto(dst, src []float64) {
	for c, v := range src {
		if v < dst[c] {
			dst[c] = v
		}
	}
}

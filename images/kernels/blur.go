package kernels

import (
	"github.com/nvr-ai/go-pixelkit/images"
)

// Average applies a mean filter with a square window of side cellSize.
//
// Window sums come from a per-channel summed-area table, so the cost per pixel
// is independent of cellSize. The divisor is the number of window cells that
// lie inside the buffer.
//
// Arguments:
// - src: The buffer to filter. It is not modified.
// - cellSize: Window side length, normalized to odd.
//
// Returns:
// - A new filtered buffer, or ErrEmptyBuffer.
//
// @example
// smooth, err := kernels.Average(frame, 5)
func Average(src *images.Buffer, cellSize int) (*images.Buffer, error) {
	if err := src.Validate(); err != nil {
		return &images.Buffer{}, err
	}
	size := NormalizeCellSize(cellSize)
	if size == 1 {
		return src.Clone(), nil
	}
	half := size >> 1

	w, h, ch := src.Width, src.Height, src.Channels
	table := integral(src)
	stride := (w + 1) * ch
	dst := images.NewBuffer(w, h, ch)

	for y := 0; y < h; y++ {
		y0, y1 := clip(y-half, h), clip(y+half+1, h)
		for x := 0; x < w; x++ {
			x0, x1 := clip(x-half, w), clip(x+half+1, w)
			count := float64((x1 - x0) * (y1 - y0))
			off := dst.Offset(x, y)
			for c := 0; c < ch; c++ {
				sum := table[y1*stride+x1*ch+c] - table[y0*stride+x1*ch+c] -
					table[y1*stride+x0*ch+c] + table[y0*stride+x0*ch+c]
				dst.Pix[off+c] = sum / count
			}
		}
	}
	return dst, nil
}

// Convolve applies k to src. Weights whose window cell lies outside the
// buffer are dropped from both the weighted sum and the weight total, and each
// output sample is divided by the weight total actually included.
func Convolve(src *images.Buffer, k Kernel) (*images.Buffer, error) {
	if err := src.Validate(); err != nil {
		return &images.Buffer{}, err
	}
	if k.Size < 1 || len(k.Weights) < k.Size*k.Size {
		return src.Clone(), nil
	}

	half := k.Half()
	w, h, ch := src.Width, src.Height, src.Channels
	dst := images.NewBuffer(w, h, ch)
	acc := make([]float64, ch)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := range acc {
				acc[c] = 0
			}
			var weights float64
			for i := 0; i < k.Size; i++ {
				sy := y + i - half
				if sy < 0 || sy >= h {
					continue
				}
				for j := 0; j < k.Size; j++ {
					sx := x + j - half
					if sx < 0 || sx >= w {
						continue
					}
					wt := k.Weights[i*k.Size+j]
					weights += wt
					px := src.Pixel(sx, sy)
					for c := range acc {
						acc[c] += wt * px[c]
					}
				}
			}

			out := dst.Pixel(x, y)
			if weights == 0 {
				copy(out, src.Pixel(x, y))
				continue
			}
			for c := range acc {
				out[c] = acc[c] / weights
			}
		}
	}
	return dst, nil
}

// GaussianBlur convolves src with Gaussian(cellSize, variance).
func GaussianBlur(src *images.Buffer, cellSize int, variance float64) (*images.Buffer, error) {
	return Convolve(src, Gaussian(cellSize, variance))
}

// Sharpen applies an unsharp mask: v' = v + factor*(v - mean), where mean is
// Average(src, cellSize). Results are not clamped.
func Sharpen(src *images.Buffer, cellSize int, factor float64) (*images.Buffer, error) {
	mean, err := Average(src, cellSize)
	if err != nil {
		return &images.Buffer{}, err
	}
	dst := src.Clone()
	for i, v := range dst.Pix {
		dst.Pix[i] = v + factor*(v-mean.Pix[i])
	}
	return dst, nil
}

// integral builds a (h+1) x (w+1) summed-area table per channel. Row 0 and
// column 0 are zero.
func integral(src *images.Buffer) []float64 {
	w, h, ch := src.Width, src.Height, src.Channels
	stride := (w + 1) * ch
	table := make([]float64, (h+1)*stride)
	row := make([]float64, ch)
	for y := 0; y < h; y++ {
		for c := range row {
			row[c] = 0
		}
		for x := 0; x < w; x++ {
			px := src.Pixel(x, y)
			for c := 0; c < ch; c++ {
				row[c] += px[c]
				table[(y+1)*stride+(x+1)*ch+c] = table[y*stride+(x+1)*ch+c] + row[c]
			}
		}
	}
	return table
}

// clip limits i to [0, n].
func clip(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

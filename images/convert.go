package images

import (
	"image"
	"image/color"
	"math"
)

// FromImage copies a Go image into a Buffer. Gray images produce a single
// channel; everything else produces three channels in BGR order.
func FromImage(img image.Image) *Buffer {
	if img == nil {
		return &Buffer{}
	}
	bounds := img.Bounds()

	if g, ok := img.(*image.Gray); ok {
		b := NewBuffer(bounds.Dx(), bounds.Dy(), 1)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				b.Pix[y*b.Width+x] = float64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return b
	}

	b := NewBuffer(bounds.Dx(), bounds.Dy(), 3)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			px := b.Pixel(x, y)
			px[0], px[1], px[2] = float64(c.B), float64(c.G), float64(c.R)
		}
	}
	return b
}

// ToImage renders b as an opaque RGBA image, clamping and rounding samples.
// Single-channel buffers are replicated into R, G and B.
func (b *Buffer) ToImage() *image.RGBA {
	if b.Empty() {
		return image.NewRGBA(image.Rectangle{})
	}
	out := image.NewRGBA(b.Bounds())
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			px := b.Pixel(x, y)
			var r, g, bl uint8
			if b.Channels >= 3 {
				bl, g, r = to8(px[0]), to8(px[1]), to8(px[2])
			} else {
				r = to8(px[0])
				g, bl = r, r
			}
			off := out.PixOffset(x, y)
			out.Pix[off+0] = r
			out.Pix[off+1] = g
			out.Pix[off+2] = bl
			out.Pix[off+3] = 0xff
		}
	}
	return out
}

func to8(v float64) uint8 {
	return uint8(math.Round(ClampSample(v)))
}

// Package edges computes gradient-magnitude edge maps and the oil-painting
// stylization built on them.
package edges

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/nvr-ai/go-pixelkit/images/kernels"
)

const (
	// PreBlurSize is the Gaussian window applied before differentiation.
	PreBlurSize = 5
	// SobelSize is the aperture of the gradient operator.
	SobelSize = 3
	// PaintingCellSize is the blur window used by OilPainting.
	PaintingCellSize = 11
	// PaintingVariance is the blur variance used by OilPainting.
	PaintingVariance = 400.0
)

// Detect returns a single-channel edge map 0.5*|gx| + 0.5*|gy| computed on a
// blurred luminance copy of b.
//
// Arguments:
// - b: A 1- or 3-channel buffer. It is not modified.
//
// Returns:
// - A single-channel buffer with b's dimensions and samples in [0,255].
//
// @example
// edgeMap, err := edges.Detect(frame)
func Detect(b *images.Buffer) (*images.Buffer, error) {
	src, err := b.ToMat()
	if err != nil {
		return &images.Buffer{}, err
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(PreBlurSize, PreBlurSize), 0, 0, gocv.BorderDefault)

	gray := gocv.NewMat()
	defer gray.Close()
	switch b.Channels {
	case 1:
		blurred.CopyTo(&gray)
	case 3:
		gocv.CvtColor(blurred, &gray, gocv.ColorBGRToGray)
	default:
		return &images.Buffer{}, errors.Wrapf(images.ErrChannelMismatch, "edge detection needs 1 or 3 channels, got %d", b.Channels)
	}

	gradX, gradY := gocv.NewMat(), gocv.NewMat()
	defer gradX.Close()
	defer gradY.Close()
	gocv.Sobel(gray, &gradX, gocv.MatTypeCV16S, 1, 0, SobelSize, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gradY, gocv.MatTypeCV16S, 0, 1, SobelSize, 1, 0, gocv.BorderDefault)

	absX, absY := gocv.NewMat(), gocv.NewMat()
	defer absX.Close()
	defer absY.Close()
	gocv.ConvertScaleAbs(gradX, &absX, 1, 0)
	gocv.ConvertScaleAbs(gradY, &absY, 1, 0)

	magnitude := gocv.NewMat()
	defer magnitude.Close()
	gocv.AddWeighted(absX, 0.5, absY, 0.5, 0, &magnitude)

	return images.FromMat(magnitude)
}

// OilPainting blurs b heavily and subtracts the edge magnitude from every
// channel, darkening strokes along edges. Results are not clamped.
func OilPainting(b *images.Buffer) (*images.Buffer, error) {
	return OilPaintingWith(b, PaintingCellSize, PaintingVariance)
}

// OilPaintingWith is OilPainting with a caller-chosen blur window.
func OilPaintingWith(b *images.Buffer, cellSize int, variance float64) (*images.Buffer, error) {
	edgeMap, err := Detect(b)
	if err != nil {
		return &images.Buffer{}, errors.Wrap(err, "detect edges")
	}

	out, err := kernels.GaussianBlur(b, cellSize, variance)
	if err != nil {
		return &images.Buffer{}, err
	}
	for i, e := range edgeMap.Pix {
		off := i * out.Channels
		for c := 0; c < out.Channels; c++ {
			out.Pix[off+c] -= e
		}
	}
	return out, nil
}

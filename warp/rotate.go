// Package warp implements geometric transforms: rotation onto an enlarged
// canvas and four-point perspective rectification.
package warp

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/images"
)

// RotatedSize returns the canvas that holds a width x height rectangle rotated
// by angle degrees: (h|sin|+w|cos|, w|sin|+h|cos|), truncated to integers.
func RotatedSize(width, height int, angle float64) image.Point {
	theta := angle * math.Pi / 180
	a, b := math.Abs(math.Sin(theta)), math.Abs(math.Cos(theta))
	w, h := float64(width), float64(height)
	return image.Pt(int(h*a+w*b), int(w*a+h*b))
}

// Rotate turns b by angle degrees (counter-clockwise) about its center onto a
// canvas large enough to hold every rotated pixel.
//
// The affine matrix is built around the source center, then its translation is
// shifted by half the growth of each axis so the content lands centered on the
// new canvas. Sampling is bicubic; destination pixels with no source are zero.
//
// Arguments:
// - b: The buffer to rotate. It is not modified.
// - angle: Rotation in degrees.
//
// Returns:
// - A new buffer of size RotatedSize(b.Width, b.Height, angle).
//
// @example
// upright, err := warp.Rotate(scan, -90)
func Rotate(b *images.Buffer, angle float64) (*images.Buffer, error) {
	src, err := b.ToMatFloat()
	if err != nil {
		return &images.Buffer{}, err
	}
	defer src.Close()

	size := RotatedSize(b.Width, b.Height, angle)
	if size.X <= 0 || size.Y <= 0 {
		return &images.Buffer{}, errors.Wrapf(images.ErrEmptyBuffer, "rotated canvas %v", size)
	}

	m := gocv.GetRotationMatrix2D(image.Pt(b.Width/2, b.Height/2), angle, 1.0)
	defer m.Close()
	m.SetDoubleAt(0, 2, m.GetDoubleAt(0, 2)+float64((size.X-b.Width)/2))
	m.SetDoubleAt(1, 2, m.GetDoubleAt(1, 2)+float64((size.Y-b.Height)/2))

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpAffineWithParams(src, &dst, m, size,
		gocv.InterpolationCubic|gocv.InterpolationFlags(gocv.WarpFillOutliers),
		gocv.BorderConstant, color.RGBA{})

	return images.FromMat(dst)
}

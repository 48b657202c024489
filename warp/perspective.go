package warp

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"github.com/nvr-ai/go-pixelkit/images"
)

// ErrDegenerateQuad is returned when four points do not define a projective
// transform (three or more collinear, or repeated points).
var ErrDegenerateQuad = errors.New("warp: degenerate quadrilateral")

// Point is a sub-pixel position.
type Point struct {
	X, Y float64
}

// Quad lists corners in the order top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// RectQuad returns the corners of the axis-aligned rectangle (0,0)-(width,height).
func RectQuad(width, height int) Quad {
	w, h := float64(width), float64(height)
	return Quad{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// Homography solves for the 3x3 projective transform H with H[2][2] = 1 that
// maps each src corner onto the matching dst corner.
//
// Each correspondence contributes two rows to an 8x8 linear system in the
// remaining eight coefficients.
func Homography(src, dst Quad) (*mat.Dense, error) {
	a := mat.NewDense(8, 8, nil)
	rhs := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		rhs.SetVec(2*i, u)
		rhs.SetVec(2*i+1, v)
	}

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(a, rhs); err != nil {
		return nil, errors.Wrap(ErrDegenerateQuad, err.Error())
	}

	h := make([]float64, 9)
	for i := 0; i < 8; i++ {
		h[i] = coeffs.AtVec(i)
		if math.IsNaN(h[i]) || math.IsInf(h[i], 0) {
			return nil, ErrDegenerateQuad
		}
	}
	h[8] = 1
	return mat.NewDense(3, 3, h), nil
}

// Project applies h to p.
func Project(h mat.Matrix, p Point) Point {
	x := h.At(0, 0)*p.X + h.At(0, 1)*p.Y + h.At(0, 2)
	y := h.At(1, 0)*p.X + h.At(1, 1)*p.Y + h.At(1, 2)
	w := h.At(2, 0)*p.X + h.At(2, 1)*p.Y + h.At(2, 2)
	return Point{X: x / w, Y: y / w}
}

// Perspective rectifies the quadrilateral corners of b onto a buffer with b's
// dimensions.
//
// The homography maps corners onto (0,0)-(width,height). The sampler runs in
// inverse-map mode: it receives the inverse homography, so each destination
// pixel pulls a bilinear sample from the source quadrilateral. Destination
// pixels whose source lies outside b are zero. Handing the forward matrix to
// an inverse-mapped sampler instead would warp the rectangle onto the quad,
// a different image.
//
// @example
// page, err := warp.Perspective(photo, warp.Quad{{12, 30}, {610, 8}, {630, 470}, {4, 452}})
func Perspective(b *images.Buffer, corners Quad) (*images.Buffer, error) {
	if err := b.Validate(); err != nil {
		return &images.Buffer{}, err
	}

	forward, err := Homography(corners, RectQuad(b.Width, b.Height))
	if err != nil {
		return &images.Buffer{}, err
	}
	var inverse mat.Dense
	if err := inverse.Inverse(forward); err != nil {
		return &images.Buffer{}, errors.Wrap(ErrDegenerateQuad, err.Error())
	}

	src, err := b.ToMatFloat()
	if err != nil {
		return &images.Buffer{}, err
	}
	defer src.Close()

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, inverse.At(r, c))
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspectiveWithParams(src, &dst, m, b.Bounds().Size(),
		gocv.InterpolationLinear|gocv.InterpolationFlags(gocv.WarpInverseMap),
		gocv.BorderConstant, color.RGBA{})

	return images.FromMat(dst)
}

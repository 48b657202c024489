package images

import (
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FromMat copies a gocv Mat into a new Buffer.
//
// Any depth is accepted; samples are converted to float64 without rescaling.
// Four-channel BGRA input drops its alpha channel.
//
// Arguments:
// - m: The source Mat. It is not modified or closed.
//
// Returns:
// - A buffer holding m's samples.
// - ErrEmptyBuffer if m is empty, or a wrapped gocv error.
//
// @example
// frame := gocv.IMRead("frame.jpg", gocv.IMReadColor)
// defer frame.Close()
// buf, err := images.FromMat(frame)
func FromMat(m gocv.Mat) (*Buffer, error) {
	if m.Empty() {
		return &Buffer{}, ErrEmptyBuffer
	}

	src := m
	if m.Channels() == 4 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(m, &bgr, gocv.ColorBGRAToBGR)
		src = bgr
	}

	f := gocv.NewMat()
	defer f.Close()
	src.ConvertTo(&f, gocv.MatTypeCV32F)

	data, err := f.DataPtrFloat32()
	if err != nil {
		return &Buffer{}, errors.Wrap(err, "read mat samples")
	}

	b := NewBuffer(f.Cols(), f.Rows(), f.Channels())
	if len(data) < len(b.Pix) {
		return &Buffer{}, errors.Errorf("mat holds %d samples, want %d", len(data), len(b.Pix))
	}
	for i := range b.Pix {
		b.Pix[i] = float64(data[i])
	}
	return b, nil
}

// ToMat renders b as an 8-bit Mat. Samples are clamped to [0,255] and rounded.
// The caller owns the returned Mat and must Close it.
func (b *Buffer) ToMat() (gocv.Mat, error) {
	if b.Empty() {
		return gocv.NewMat(), ErrEmptyBuffer
	}
	mt, err := matType(b.Channels, false)
	if err != nil {
		return gocv.NewMat(), err
	}

	m := gocv.NewMatWithSize(b.Height, b.Width, mt)
	data, err := m.DataPtrUint8()
	if err != nil {
		m.Close()
		return gocv.NewMat(), errors.Wrap(err, "write mat samples")
	}
	for i, v := range b.Pix {
		data[i] = uint8(math.Round(ClampSample(v)))
	}
	return m, nil
}

// ToMatFloat renders b as a 32-bit float Mat without clamping, for primitives
// that must see out-of-range intermediates. The caller must Close the Mat.
func (b *Buffer) ToMatFloat() (gocv.Mat, error) {
	if b.Empty() {
		return gocv.NewMat(), ErrEmptyBuffer
	}
	mt, err := matType(b.Channels, true)
	if err != nil {
		return gocv.NewMat(), err
	}

	m := gocv.NewMatWithSize(b.Height, b.Width, mt)
	data, err := m.DataPtrFloat32()
	if err != nil {
		m.Close()
		return gocv.NewMat(), errors.Wrap(err, "write mat samples")
	}
	for i, v := range b.Pix {
		data[i] = float32(v)
	}
	return m, nil
}

func matType(channels int, float bool) (gocv.MatType, error) {
	switch {
	case channels == 1 && float:
		return gocv.MatTypeCV32FC1, nil
	case channels == 3 && float:
		return gocv.MatTypeCV32FC3, nil
	case channels == 4 && float:
		return gocv.MatTypeCV32FC4, nil
	case channels == 1:
		return gocv.MatTypeCV8UC1, nil
	case channels == 3:
		return gocv.MatTypeCV8UC3, nil
	case channels == 4:
		return gocv.MatTypeCV8UC4, nil
	}
	return gocv.MatTypeCV8UC1, errors.Wrapf(ErrChannelMismatch, "no mat type for %d channels", channels)
}

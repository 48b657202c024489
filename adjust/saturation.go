package adjust

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/images"
)

// saturationChannel is the index of S in an HSV pixel.
const saturationChannel = 1

// Saturation pushes color saturation toward its maximum (level > Base) or
// toward zero (level < Base).
//
// The buffer goes through gocv's 8-bit BGR->HSV conversion. Above Base each
// saturation s becomes s + (255-s)*f with f = (level-Base)/Base; below Base it
// becomes s*f with f = level/Base. The HSV->BGR conversion back is the only
// clamping applied.
//
// Single-channel buffers carry no saturation and are returned unchanged.
func Saturation(b *images.Buffer, level int) (*images.Buffer, error) {
	if err := validate(b, level); err != nil {
		return &images.Buffer{}, err
	}
	if level == Base || b.Channels == 1 {
		return b, nil
	}
	if b.Channels != 3 {
		return &images.Buffer{}, errors.Wrapf(images.ErrChannelMismatch, "saturation needs 3 channels, got %d", b.Channels)
	}

	bgr, err := b.ToMat()
	if err != nil {
		return &images.Buffer{}, err
	}
	defer bgr.Close()

	hsvMat := gocv.NewMat()
	defer hsvMat.Close()
	gocv.CvtColor(bgr, &hsvMat, gocv.ColorBGRToHSV)

	hsv, err := images.FromMat(hsvMat)
	if err != nil {
		return &images.Buffer{}, errors.Wrap(err, "read hsv")
	}

	up := level > Base
	var f float64
	if up {
		f = float64(level-Base) / Base
	} else {
		f = float64(level) / Base
	}
	for i := saturationChannel; i < len(hsv.Pix); i += hsv.Channels {
		s := hsv.Pix[i]
		if up {
			hsv.Pix[i] = s + (images.MaxSample-s)*f
		} else {
			hsv.Pix[i] = s * f
		}
	}

	shifted, err := hsv.ToMat()
	if err != nil {
		return &images.Buffer{}, err
	}
	defer shifted.Close()

	outMat := gocv.NewMat()
	defer outMat.Close()
	gocv.CvtColor(shifted, &outMat, gocv.ColorHSVToBGR)

	return images.FromMat(outMat)
}

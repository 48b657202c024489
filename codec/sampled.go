package codec

import (
	"math"

	"github.com/cshum/vipsgen/vips"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/images"
)

// RetryStep is added to the subsampling factor when the first sampled decode
// fails.
const RetryStep = 2

// InSampleSize returns the integer subsampling factor that brings a
// width x height image within reqWidth x reqHeight.
//
// The factor starts from the rounded ratio of the larger axis, is bumped to
// an even value, then grown until both axes fit. Images that already fit use 1.
//
// @example
// InSampleSize(4000, 3000, 800, 600) // 6
func InSampleSize(width, height, reqWidth, reqHeight int) int {
	if reqWidth <= 0 || reqHeight <= 0 || (width <= reqWidth && height <= reqHeight) {
		return 1
	}

	h := int(math.Floor(float64(height)/float64(reqHeight) + 0.5))
	w := int(math.Floor(float64(width)/float64(reqWidth) + 0.5))
	sample := h
	if w > sample {
		sample = w
	}
	if sample%2 == 1 {
		sample++
	}
	for width/sample > reqWidth || height/sample > reqHeight {
		sample++
	}
	return sample
}

// DecodeSampled decodes data shrunk on load by InSampleSize, so large images
// never materialize at full resolution.
//
// When the decode at the computed factor fails, it is retried once with the
// factor increased by RetryStep; a second failure is logged and returned.
//
// Arguments:
//   - data: Encoded image bytes (jpeg, png or webp).
//   - reqWidth, reqHeight: The bounds the result must fit within.
//   - log: Receives the failure. Nil uses the standard logger.
//
// Returns:
//   - A 3-channel BGR buffer no larger than the requested bounds.
//   - ErrDecode when the bytes cannot be decoded.
func DecodeSampled(data []byte, reqWidth, reqHeight int, log logrus.FieldLogger) (*images.Buffer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if len(data) == 0 {
		return &images.Buffer{}, errors.Wrap(ErrDecode, "empty image data")
	}

	probe, err := vips.NewImageFromBuffer(data, &vips.LoadOptions{})
	if err != nil {
		log.WithError(err).Error("failed to read image header")
		return &images.Buffer{}, errors.Wrap(ErrDecode, err.Error())
	}
	width, height := probe.Width(), probe.Height()
	probe.Close()

	sample := InSampleSize(width, height, reqWidth, reqHeight)
	b, err := decodeAt(data, width, height, sample)
	if err == nil {
		return b, nil
	}

	log.WithError(err).WithField("sample", sample).Warn("sampled decode failed, retrying coarser")
	b, err = decodeAt(data, width, height, sample+RetryStep)
	if err != nil {
		log.WithError(err).WithField("sample", sample+RetryStep).Error("sampled decode failed")
		return &images.Buffer{}, errors.Wrap(ErrDecode, err.Error())
	}
	return b, nil
}

// decodeAt is swapped in tests to fail on demand.
var decodeAt = decodeVips

func decodeVips(data []byte, width, height, sample int) (*images.Buffer, error) {
	img, err := vips.NewImageFromBuffer(data, &vips.LoadOptions{
		Access: vips.AccessSequential,
	})
	if err != nil {
		return nil, errors.Wrap(err, "load image")
	}
	defer img.Close()

	w, h := max(width/sample, 1), max(height/sample, 1)
	err = img.ThumbnailImage(w, &vips.ThumbnailImageOptions{
		Height: h,
		FailOn: vips.FailOnError,
	})
	if err != nil {
		return nil, errors.Wrap(err, "resize image")
	}

	png, err := img.PngsaveBuffer(&vips.PngsaveBufferOptions{})
	if err != nil || len(png) == 0 {
		return nil, errors.New("failed to encode resized image")
	}

	m, err := gocv.IMDecode(png, gocv.IMReadColor)
	if err != nil {
		return nil, errors.Wrap(err, "decode resized image")
	}
	defer m.Close()
	if m.Empty() {
		return nil, errors.New("decoded image is empty")
	}
	return images.FromMat(m)
}

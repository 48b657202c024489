package detector

import (
	"image"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/common"
	"github.com/nvr-ai/go-pixelkit/images"
)

// ErrCascadeLoad is returned when a cascade file cannot be loaded.
var ErrCascadeLoad = errors.New("detector: cascade load failed")

// CascadeOptions tunes a Cascade.
type CascadeOptions struct {
	// MaxDimension downscales frames whose longer edge exceeds it before
	// detection. Zero disables downscaling.
	MaxDimension int `json:"max_dimension" yaml:"max_dimension"`
	// MinSize drops boxes narrower or shorter than this many pixels.
	MinSize int `json:"min_size" yaml:"min_size"`
	// IoUThreshold merges overlapping boxes when positive. See Suppress.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// Logger receives load and detection events. Nil uses the standard logger.
	Logger logrus.FieldLogger `json:"-" yaml:"-"`
}

// Cascade is a Haar/LBP cascade classifier. It owns a native handle and must
// be released with Close.
type Cascade struct {
	classifier gocv.CascadeClassifier
	opts       CascadeOptions
	log        logrus.FieldLogger
	path       string
	closed     bool
}

// OpenCascade loads the cascade definition at path.
//
// Arguments:
//   - path: Location of the cascade XML (e.g. haarcascade_frontalface_default.xml).
//   - opts: Detection options.
//
// Returns:
//   - *Cascade: The loaded detector. Callers must Close it.
//   - error: ErrCascadeLoad when the file is missing or invalid.
//
// @example
// faces, err := detector.OpenCascade("haarcascade_frontalface_default.xml", detector.CascadeOptions{})
//
//	if err != nil {
//		return err
//	}
//
// defer faces.Close()
func OpenCascade(path string, opts CascadeOptions) (*Cascade, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("cascade", path)

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		log.Error("error reading cascade file")
		return nil, errors.Wrapf(ErrCascadeLoad, "path %q", path)
	}

	log.Debug("cascade loaded")
	return &Cascade{classifier: classifier, opts: opts, log: log, path: path}, nil
}

// Detect implements Detector.
func (c *Cascade) Detect(b *images.Buffer) ([]common.Box, error) {
	if c.closed {
		return nil, errors.Errorf("detector: cascade %q is closed", c.path)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	work, scale := b, float32(1)
	if limit := c.opts.MaxDimension; limit > 0 && (b.Width > limit || b.Height > limit) {
		small, err := images.Thumbnail(b, limit, limit)
		if err != nil {
			return nil, errors.Wrap(err, "downscale for detection")
		}
		work, scale = small, float32(b.Width)/float32(small.Width)
	}

	m, err := work.ToMat()
	if err != nil {
		return nil, err
	}
	defer m.Close()

	rects := c.classifier.DetectMultiScale(m)
	bounds := b.Bounds()
	boxes := lo.FilterMap(rects, func(r image.Rectangle, _ int) (common.Box, bool) {
		box := common.BoxFromRect(r).Scale(scale).Clip(bounds)
		minSize := float32(c.opts.MinSize)
		return box, !box.Empty() && box.Width >= minSize && box.Height >= minSize
	})
	if c.opts.IoUThreshold > 0 {
		boxes = Suppress(boxes, c.opts.IoUThreshold)
	}

	c.log.WithField("boxes", len(boxes)).Debug("cascade detection")
	return boxes, nil
}

// Close releases the native classifier. It is safe to call more than once.
func (c *Cascade) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.classifier.Close()
}

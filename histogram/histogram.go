// Package histogram compares two images by the intensity histograms of their
// first detected region.
package histogram

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/detector"
	"github.com/nvr-ai/go-pixelkit/images"
)

const (
	// DefaultBins is the histogram resolution used when Comparator.Bins is zero.
	DefaultBins = 1000
	// DefaultThreshold is the correlation above which two regions match.
	DefaultThreshold = 0.72
)

// Result is the outcome of a comparison.
type Result struct {
	// Correlation is the Pearson correlation of the two histograms in [-1, 1].
	Correlation float64 `json:"correlation" yaml:"correlation"`
	// Match reports Correlation > threshold.
	Match bool `json:"match" yaml:"match"`
	// Detected is false when either input had no detected region.
	Detected bool `json:"detected" yaml:"detected"`
}

// NoMatch is returned when either input has no detected region.
var NoMatch = Result{}

// Comparator compares detected regions of two buffers.
type Comparator struct {
	// Detector finds the region to compare. Only its first box is used.
	Detector detector.Detector
	// Bins is the histogram resolution over [0, 256). Zero means DefaultBins.
	Bins int
	// Threshold is the match cut-off. Zero means DefaultThreshold.
	Threshold float64
	// Logger receives comparison events. Nil uses the standard logger.
	Logger logrus.FieldLogger
}

// NewComparator returns a Comparator with the default bin count and threshold.
func NewComparator(d detector.Detector) *Comparator {
	return &Comparator{Detector: d, Bins: DefaultBins, Threshold: DefaultThreshold}
}

func (c *Comparator) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

func (c *Comparator) bins() int {
	if c.Bins <= 0 {
		return DefaultBins
	}
	return c.Bins
}

func (c *Comparator) threshold() float64 {
	if c.Threshold == 0 {
		return DefaultThreshold
	}
	return c.Threshold
}

// Compare detects a region in each buffer, histograms the first region of each
// in grayscale and correlates the two histograms.
//
// Arguments:
//   - a, b: The buffers to compare.
//
// Returns:
//   - Result: NoMatch when either buffer has no detection.
//   - error: Detector failures or empty input.
//
// @example
// cmp := histogram.NewComparator(faces)
// res, err := cmp.Compare(left, right)
//
//	if err == nil && res.Match {
//		fmt.Printf("same person (%.3f)\n", res.Correlation)
//	}
func (c *Comparator) Compare(a, b *images.Buffer) (Result, error) {
	if c.Detector == nil {
		return NoMatch, errors.New("histogram: comparator has no detector")
	}

	ha, ok, err := c.regionHistogram(a)
	if err != nil || !ok {
		return NoMatch, err
	}
	defer ha.Close()
	hb, ok, err := c.regionHistogram(b)
	if err != nil || !ok {
		return NoMatch, err
	}
	defer hb.Close()

	corr := float64(gocv.CompareHist(ha, hb, gocv.HistCmpCorrel))
	res := Result{Correlation: corr, Match: corr > c.threshold(), Detected: true}
	c.logger().WithFields(logrus.Fields{
		"correlation": corr,
		"match":       res.Match,
	}).Debug("histogram comparison")
	return res, nil
}

// regionHistogram returns the histogram of the first detected region. ok is
// false when nothing was detected; the returned Mat is then not allocated.
func (c *Comparator) regionHistogram(b *images.Buffer) (gocv.Mat, bool, error) {
	if err := b.Validate(); err != nil {
		return gocv.Mat{}, false, err
	}
	boxes, err := c.Detector.Detect(b)
	if err != nil {
		return gocv.Mat{}, false, errors.Wrap(err, "detect")
	}
	if len(boxes) == 0 {
		c.logger().Info("no region detected, comparison skipped")
		return gocv.Mat{}, false, nil
	}

	region, err := b.Crop(boxes[0].ToRect())
	if err != nil {
		c.logger().WithField("box", boxes[0].String()).Info("detected region is empty")
		return gocv.Mat{}, false, nil
	}
	hist, err := calc(region, c.bins())
	if err != nil {
		return gocv.Mat{}, false, err
	}
	return hist, true, nil
}

// Histogram returns the grayscale intensity histogram of b with the given
// number of bins spanning [0, 256).
func Histogram(b *images.Buffer, bins int) ([]float64, error) {
	if bins <= 0 {
		return nil, errors.Errorf("histogram: invalid bin count %d", bins)
	}
	hist, err := calc(b, bins)
	if err != nil {
		return nil, err
	}
	defer hist.Close()

	out := make([]float64, bins)
	for i := range out {
		out[i] = float64(hist.GetFloatAt(i, 0))
	}
	return out, nil
}

func calc(b *images.Buffer, bins int) (gocv.Mat, error) {
	src, err := b.ToMat()
	if err != nil {
		return gocv.Mat{}, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	switch b.Channels {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	default:
		return gocv.Mat{}, errors.Wrapf(images.ErrChannelMismatch, "histogram of %d channels", b.Channels)
	}

	mask := gocv.NewMat()
	defer mask.Close()
	hist := gocv.NewMat()
	gocv.CalcHist([]gocv.Mat{gray}, []int{0}, mask, &hist, []int{bins}, []float64{0, 256}, false)
	return hist, nil
}

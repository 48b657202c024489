package video

import (
	"context"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/common"
	"github.com/nvr-ai/go-pixelkit/detector"
	"github.com/nvr-ai/go-pixelkit/images"
)

const (
	// DefaultRequiredHits is the number of frames with detections CaptureFaces
	// waits for before saving.
	DefaultRequiredHits = 3
	// FaceLabel is drawn above every annotated box.
	FaceLabel = "Human"
)

var annotateColor = color.RGBA{0, 255, 0, 0}

// Hits returns the number of frames with detections seen by the last
// CaptureFaces run.
func (s *Session) Hits() int {
	return s.hits
}

// CaptureFaces reads frames until required frames have contained at least one
// detection, then writes that frame, annotated with its boxes, to sink as
// frame 0. The hit counter belongs to this session and restarts at zero on
// every call. src is always closed.
//
// Arguments:
//   - ctx: Cancellation is observed between reads.
//   - src: Usually a camera. CaptureFaces takes ownership and closes it.
//   - sink: Receives the annotated frame.
//   - d: The region detector.
//   - required: Hits needed before saving. Values below 1 use DefaultRequiredHits.
//
// Returns:
//   - Stats with one path when the capture completed, none when the source
//     ended first.
func (s *Session) CaptureFaces(ctx context.Context, src Source, sink Sink, d detector.Detector, required int) (Stats, error) {
	r := s.begin("faces", src, sink)
	if required < 1 {
		required = DefaultRequiredHits
	}

	s.hits = 0
	for i := 0; ; i++ {
		frame, err := r.read(ctx, src)
		if err != nil {
			return r.finish(src, err)
		}

		boxes, err := d.Detect(frame)
		if err != nil {
			return r.finish(src, errors.Wrapf(err, "detect frame %d", i))
		}
		s.tracker.RecordMetric("boxes", float64(len(boxes)))
		if len(boxes) == 0 {
			continue
		}

		s.hits++
		r.log.WithFields(logrus.Fields{"frame": i, "boxes": len(boxes), "hits": s.hits}).Debug("detection")
		if s.hits < required {
			continue
		}

		annotated, err := Annotate(frame, boxes)
		if err != nil {
			return r.finish(src, err)
		}
		if err := r.write(0, i, annotated); err != nil {
			return r.finish(src, err)
		}
		return r.finish(src, nil)
	}
}

// Annotate returns a copy of b with every box outlined and labelled.
func Annotate(b *images.Buffer, boxes []common.Box) (*images.Buffer, error) {
	m, err := b.ToMat()
	if err != nil {
		return &images.Buffer{}, err
	}
	defer m.Close()

	for _, box := range boxes {
		r := box.ToRect()
		gocv.Rectangle(&m, r, annotateColor, 1)
		gocv.PutText(&m, FaceLabel, image.Pt(r.Min.X, r.Min.Y), gocv.FontHersheyScriptSimplex, 1.0, annotateColor, 1)
	}
	return images.FromMat(m)
}

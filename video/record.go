package video

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const (
	// DefaultCodec is the FourCC used by Record when none is given.
	DefaultCodec = "MJPG"
	// DefaultFPS is used when neither the caller nor the source supplies a rate.
	DefaultFPS = 15.0
)

// RecordOptions configures Record.
type RecordOptions struct {
	// Codec is a FourCC such as "MJPG" or "DIVX".
	Codec string `json:"codec" yaml:"codec"`
	// FPS is the output frame rate. Zero takes the source rate when it has one.
	FPS float64 `json:"fps" yaml:"fps"`
	// Duration bounds the recording on the session clock. Zero records until
	// the source ends or ctx is cancelled.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

type rater interface {
	FPS() float64
}

// Record copies frames from src into a video file at path until the duration
// elapses, the source ends or ctx is cancelled. The output size is taken from
// the first frame. Stats.Indices lists the recorded frames and Stats.Paths holds
// path once the writer was opened. src is always closed.
//
// @example
// stats, err := session.Record(ctx, camera, "clip.avi", video.RecordOptions{Duration: time.Minute})
func (s *Session) Record(ctx context.Context, src Source, path string, opts RecordOptions) (Stats, error) {
	r := s.begin("record", src, nil)
	r.log = r.log.WithField("path", path)
	if opts.Codec == "" {
		opts.Codec = DefaultCodec
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
		if rs, ok := src.(rater); ok && rs.FPS() > 0 {
			opts.FPS = rs.FPS()
		}
	}

	var writer *gocv.VideoWriter
	defer func() {
		if writer != nil {
			writer.Close()
		}
	}()

	for i := 0; opts.Duration <= 0 || s.now().Sub(r.start) < opts.Duration; i++ {
		frame, err := r.read(ctx, src)
		if errors.Is(err, io.EOF) && writer != nil {
			break
		}
		if errors.Is(err, io.EOF) {
			return r.finish(src, errors.Wrap(io.ErrUnexpectedEOF, "source produced no frames"))
		}
		if err != nil {
			return r.finish(src, err)
		}

		if writer == nil {
			writer, err = gocv.VideoWriterFile(path, opts.Codec, opts.FPS, frame.Width, frame.Height, frame.Channels == 3)
			if err != nil {
				return r.finish(src, errors.Wrapf(err, "open writer %q", path))
			}
			r.stats.Paths = append(r.stats.Paths, path)
			r.log.WithFields(logrus.Fields{"codec": opts.Codec, "fps": opts.FPS}).Debug("writer opened")
		}

		m, err := frame.ToMat()
		if err != nil {
			return r.finish(src, err)
		}
		err = writer.Write(m)
		m.Close()
		if err != nil {
			return r.finish(src, errors.Wrapf(err, "write frame %d", i))
		}
		r.stats.Indices = append(r.stats.Indices, i)
		s.tracker.Inc("frames_written", 1)
	}

	return r.finish(src, nil)
}

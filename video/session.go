package video

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/nvr-ai/go-pixelkit/profiler"
)

var (
	// ErrUnknownLength is returned by Random for sources without a frame count.
	ErrUnknownLength = errors.New("video: source length unknown")
	// ErrTooManySamples is returned by Random when more frames are requested
	// than the source holds.
	ErrTooManySamples = errors.New("video: sample count exceeds source length")
)

// SessionOptions configures a Session.
type SessionOptions struct {
	// Logger receives session events. Nil uses the standard logger.
	Logger logrus.FieldLogger
	// Clock drives TimeBounded and Record. Nil uses time.Now.
	Clock func() time.Time
	// Rand draws Random indices. Nil seeds a generator from the clock.
	Rand *rand.Rand
}

// Session samples frames from sources. It owns its logger, random source,
// metrics and detection-hit counter; nothing is shared between sessions.
// A Session is not safe for concurrent use.
type Session struct {
	ID uuid.UUID

	log     *logrus.Entry
	now     func() time.Time
	rand    *rand.Rand
	tracker *profiler.Tracker
	hits    int
}

// Stats summarizes one sampling run.
type Stats struct {
	// FramesRead is the number of frames pulled from the source.
	FramesRead int `json:"frames_read"`
	// Indices are the source frame indices that were written, ascending.
	Indices []int `json:"indices"`
	// Paths are the written files, parallel to Indices.
	Paths []string `json:"paths"`
	// Elapsed is the run's duration on the session clock.
	Elapsed time.Duration `json:"elapsed"`
}

// FramesWritten returns the number of frames written.
func (s Stats) FramesWritten() int {
	return len(s.Paths)
}

// NewSession creates a Session with a fresh ID.
func NewSession(opts SessionOptions) *Session {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(now().UnixNano()))
	}

	id := uuid.New()
	return &Session{
		ID:      id,
		log:     log.WithField("session", id.String()),
		now:     now,
		rand:    r,
		tracker: profiler.NewTracker(now),
	}
}

// Tracker exposes the session's counters and timings.
func (s *Session) Tracker() *profiler.Tracker {
	return s.tracker
}

// run carries the per-call bookkeeping shared by every sampling mode.
type run struct {
	s     *Session
	log   *logrus.Entry
	sink  Sink
	stats Stats
	start time.Time
}

func (s *Session) begin(mode string, src Source, sink Sink) *run {
	r := &run{
		s:     s,
		log:   s.log.WithFields(logrus.Fields{"mode": mode, "source": sourceName(src)}),
		sink:  sink,
		start: s.now(),
	}
	r.log.Info("sampling started")
	return r
}

func (r *run) read(ctx context.Context, src Source) (*images.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frame, err := src.Read()
	if err != nil {
		return nil, err
	}
	r.stats.FramesRead++
	r.s.tracker.Inc("frames_read", 1)
	return frame, nil
}

func (r *run) write(n, index int, frame *images.Buffer) error {
	done := r.s.tracker.StartOperation("write")
	path, err := r.sink.Write(n, frame)
	done()
	if err != nil {
		r.log.WithError(err).WithField("frame", index).Error("failed to write frame")
		return errors.Wrapf(err, "write frame %d", index)
	}
	r.s.tracker.Inc("frames_written", 1)
	r.stats.Indices = append(r.stats.Indices, index)
	r.stats.Paths = append(r.stats.Paths, path)
	r.log.WithFields(logrus.Fields{"frame": index, "path": path}).Debug("frame written")
	return nil
}

// finish closes src, stamps the elapsed time and logs the outcome. A read
// error of io.EOF is a normal end of stream.
func (r *run) finish(src Source, err error) (Stats, error) {
	if cerr := src.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "close source")
	}
	r.stats.Elapsed = r.s.now().Sub(r.start)
	if errors.Is(err, io.EOF) {
		err = nil
	}

	log := r.log.WithFields(logrus.Fields{
		"frames_read":    r.stats.FramesRead,
		"frames_written": r.stats.FramesWritten(),
		"elapsed":        r.stats.Elapsed.String(),
	})
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).Warn("sampling stopped")
		return r.stats, err
	case err != nil:
		log.WithError(err).Error("sampling failed")
		return r.stats, err
	}
	log.Info("sampling finished")
	return r.stats, nil
}

func sourceName(src Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}

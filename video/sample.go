package video

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Periodic writes every interval-th frame of src to sink, numbering the
// written files 0, 1, 2, ... It stops at the source's declared frame count
// (or at end of stream when the count is unknown) and always closes src.
// A cancelled ctx stops the run and is returned alongside the partial Stats.
//
// Arguments:
//   - ctx: Cancellation is observed between reads.
//   - src: The frame source. Periodic takes ownership and closes it.
//   - sink: Where sampled frames go.
//   - interval: Write frames whose index is a multiple of interval.
//
// Returns:
//   - Stats of the run.
//   - error: Read or write failures. End of stream is not an error.
//
// @example
// stats, err := session.Periodic(ctx, src, sink, 25)
func (s *Session) Periodic(ctx context.Context, src Source, sink Sink, interval int) (Stats, error) {
	r := s.begin("periodic", src, sink)
	if interval < 1 {
		return r.finish(src, errors.Errorf("video: invalid interval %d", interval))
	}

	total, known := src.FrameCount()
	written := 0
	for i := 0; !known || i < total; i++ {
		frame, err := r.read(ctx, src)
		if err != nil {
			return r.finish(src, err)
		}
		if i%interval != 0 {
			continue
		}
		if err := r.write(written, i, frame); err != nil {
			return r.finish(src, err)
		}
		written++
	}
	return r.finish(src, nil)
}

// TimeBounded reads src until duration has elapsed on the session clock,
// writing every stride-th frame with sequential numbering. It stops early when
// the source ends, ctx is cancelled or an I/O error occurs, and always closes
// src. A stride below 1 writes every frame.
func (s *Session) TimeBounded(ctx context.Context, src Source, sink Sink, duration time.Duration, stride int) (Stats, error) {
	r := s.begin("timed", src, sink)
	if stride < 1 {
		stride = 1
	}

	written := 0
	for i := 0; s.now().Sub(r.start) < duration; i++ {
		frame, err := r.read(ctx, src)
		if err != nil {
			return r.finish(src, err)
		}
		if i%stride != 0 {
			continue
		}
		if err := r.write(written, i, frame); err != nil {
			return r.finish(src, err)
		}
		written++
	}
	return r.finish(src, nil)
}

// Random writes count distinct frames chosen uniformly from a source of known
// length N. Files are named by source index. Frames are scanned from index 0
// and scanning stops at the largest selected index, so no frame past it is
// read. src is always closed.
//
// Returns:
//   - Stats whose Indices are the selected indices in ascending order.
//   - ErrUnknownLength when src has no frame count.
//   - ErrTooManySamples when count exceeds N.
//   - io.ErrUnexpectedEOF when the source ends before the largest index.
func (s *Session) Random(ctx context.Context, src Source, sink Sink, count int) (Stats, error) {
	r := s.begin("random", src, sink)

	total, known := src.FrameCount()
	switch {
	case !known:
		return r.finish(src, ErrUnknownLength)
	case count < 0:
		return r.finish(src, errors.Errorf("video: invalid sample count %d", count))
	case count > total:
		return r.finish(src, errors.Wrapf(ErrTooManySamples, "%d of %d", count, total))
	case count == 0:
		return r.finish(src, nil)
	}

	indices := s.SampleIndices(total, count)
	last := indices[len(indices)-1]
	r.log.WithFields(logrus.Fields{"count": count, "total": total, "last": last}).Debug("indices selected")

	next := 0
	for i := 0; i <= last; i++ {
		frame, err := r.read(ctx, src)
		if errors.Is(err, io.EOF) {
			return r.finish(src, errors.Wrapf(io.ErrUnexpectedEOF, "source ended at frame %d of declared %d", i, total))
		}
		if err != nil {
			return r.finish(src, err)
		}
		if i != indices[next] {
			continue
		}
		if err := r.write(i, i, frame); err != nil {
			return r.finish(src, err)
		}
		next++
	}
	return r.finish(src, nil)
}

// SampleIndices draws count distinct integers uniformly from [0, n) and
// returns them ascending. It uses Floyd's algorithm, so memory is O(count)
// regardless of n. A count outside [0, n] returns nil.
func (s *Session) SampleIndices(n, count int) []int {
	if count < 0 || count > n {
		return nil
	}
	selected := make(map[int]struct{}, count)
	for j := n - count; j < n; j++ {
		t := s.rand.Intn(j + 1)
		if _, dup := selected[t]; dup {
			t = j
		}
		selected[t] = struct{}{}
	}
	indices := lo.Keys(selected)
	sort.Ints(indices)
	return indices
}

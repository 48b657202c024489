// Package test provides deterministic fixtures shared by package tests.
package test

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pixelkit/common"
	"github.com/nvr-ai/go-pixelkit/images"
)

// Gradient returns a width x height buffer whose samples vary with position
// and channel, so that any two distinct pixels differ.
//
// @example
// frame := test.Gradient(64, 48, 3)
func Gradient(width, height, channels int) *images.Buffer {
	b := images.NewBuffer(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				b.Set(x, y, c, float64((x*7+y*3+c*40)%256))
			}
		}
	}
	return b
}

// Uniform returns a buffer with every sample set to v.
func Uniform(width, height, channels int, v float64) *images.Buffer {
	return images.NewUniform(width, height, channels, v)
}

// MockSource is an in-memory frame source. Frame i is a uniform 8x8 BGR
// buffer whose samples equal i modulo 256, so tests can tell frames apart.
//
// @example
// src := test.NewMockSource(100, true)
// stats, err := session.Random(ctx, src, sink, 5)
// fmt.Println(src.Reads()) // stats.Indices[4] + 1
type MockSource struct {
	// Frames is the number of frames the source yields before io.EOF.
	Frames int
	// Declared is the length reported by FrameCount. Defaults to Frames.
	Declared int
	// Known controls whether FrameCount reports a length.
	Known bool
	// FailAt makes Read return an error at this index. Negative disables it.
	FailAt int
	// Width, Height and Channels shape the generated frames (default 8x8x3).
	Width, Height, Channels int
	// Marked frames carry a red top-left pixel; see IsMarked.
	Marked map[int]bool

	reads  int
	closes int
}

// NewMockSource returns a source of n frames. known controls FrameCount.
func NewMockSource(n int, known bool) *MockSource {
	return &MockSource{Frames: n, Declared: n, Known: known, FailAt: -1, Width: 8, Height: 8, Channels: 3}
}

// Read implements the frame source contract.
func (m *MockSource) Read() (*images.Buffer, error) {
	if m.closes > 0 {
		return nil, errors.New("mock source: read after close")
	}
	i := m.reads
	if m.FailAt >= 0 && i == m.FailAt {
		return nil, errors.Errorf("mock source: read failure at %d", i)
	}
	if i >= m.Frames {
		return nil, io.EOF
	}
	m.reads++
	frame := images.NewUniform(m.Width, m.Height, m.Channels, float64(i%256))
	if m.Marked[i] {
		frame.Set(0, 0, 0, 255)
		frame.Set(0, 0, 1, 0)
	}
	return frame, nil
}

// FrameCount implements the frame source contract.
func (m *MockSource) FrameCount() (int, bool) {
	return m.Declared, m.Known
}

// Close implements the frame source contract and counts calls.
func (m *MockSource) Close() error {
	m.closes++
	return nil
}

// Reads returns the number of frames successfully read.
func (m *MockSource) Reads() int {
	return m.reads
}

// Closes returns the number of Close calls.
func (m *MockSource) Closes() int {
	return m.closes
}

func (m *MockSource) String() string {
	return fmt.Sprintf("mock:%d", m.Frames)
}

// IsMarked reports whether b is a marked frame produced by MockSource.
func IsMarked(b *images.Buffer) bool {
	return !b.Empty() && b.Channels >= 2 && b.At(0, 0, 0) == 255 && b.At(0, 0, 1) == 0
}

// FakeClock advances by Step on every Now call.
type FakeClock struct {
	mu   sync.Mutex
	t    time.Time
	Step time.Duration
}

// NewFakeClock starts at the Unix epoch.
func NewFakeClock(step time.Duration) *FakeClock {
	return &FakeClock{t: time.Unix(0, 0), Step: step}
}

// Now returns the current fake time, then advances it.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.Step)
	return now
}

// MemorySink records written frames in memory.
type MemorySink struct {
	Frames map[int]*images.Buffer
	Order  []int
	// Err, when set, is returned by every Write.
	Err error
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{Frames: make(map[int]*images.Buffer)}
}

// Write implements the frame sink contract.
func (s *MemorySink) Write(n int, b *images.Buffer) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.Frames[n] = b
	s.Order = append(s.Order, n)
	return fmt.Sprintf("mem://frame-%d", n), nil
}

// MockDetector returns scripted boxes, one entry per call, and counts calls.
// Calls past the script return no boxes.
type MockDetector struct {
	Boxes       [][]common.Box
	ShouldError bool

	calls int
}

// Detect implements the detector contract.
func (m *MockDetector) Detect(b *images.Buffer) ([]common.Box, error) {
	m.calls++
	if m.ShouldError {
		return nil, errors.New("mock detector error")
	}
	if m.calls > len(m.Boxes) {
		return nil, nil
	}
	return m.Boxes[m.calls-1], nil
}

// Calls returns the number of Detect calls.
func (m *MockDetector) Calls() int {
	return m.calls
}

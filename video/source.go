// Package video pulls frames from cameras, files and streams, and samples
// them to still images.
package video

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/images"
)

var (
	// ErrSourceClosed is returned by Read after Close.
	ErrSourceClosed = errors.New("video: source closed")
	// ErrSourceOpen is returned when a device, file or stream cannot be opened.
	ErrSourceOpen = errors.New("video: cannot open source")
)

// Source is a sequential supply of frames.
type Source interface {
	// Read returns the next frame, or io.EOF once the source is exhausted.
	Read() (*images.Buffer, error)
	// FrameCount returns the declared number of frames. ok is false for
	// sources without a reliable length, such as cameras and live streams.
	FrameCount() (n int, ok bool)
	// Close releases the source. Calling it more than once is a no-op.
	Close() error
}

// Capture is a Source backed by a gocv VideoCapture.
type Capture struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	name    string
	live    bool
	closed  bool
}

// Open picks the capture kind from the source string: an integer is a device
// id, a string containing "://" is a network stream, anything else is a file.
//
// @example
// src, err := video.Open("rtsp://10.0.0.5/stream1")
func Open(source string) (*Capture, error) {
	if id, err := strconv.Atoi(source); err == nil {
		return OpenDevice(id)
	}
	if strings.Contains(source, "://") {
		return OpenStream(source)
	}
	return OpenFile(source)
}

// OpenFile opens a video file. File sources report their frame count.
func OpenFile(path string) (*Capture, error) {
	c, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceOpen, "file %q: %v", path, err)
	}
	return newCapture(c, path, false)
}

// OpenStream opens a network stream. Streams have no reliable length.
func OpenStream(url string) (*Capture, error) {
	c, err := gocv.VideoCaptureFile(url)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceOpen, "stream %q: %v", url, err)
	}
	return newCapture(c, url, true)
}

// OpenDevice opens a camera by id.
func OpenDevice(id int) (*Capture, error) {
	c, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceOpen, "device %d: %v", id, err)
	}
	return newCapture(c, fmt.Sprintf("device:%d", id), true)
}

func newCapture(c *gocv.VideoCapture, name string, live bool) (*Capture, error) {
	if !c.IsOpened() {
		c.Close()
		return nil, errors.Wrapf(ErrSourceOpen, "%q", name)
	}
	return &Capture{capture: c, frame: gocv.NewMat(), name: name, live: live}, nil
}

// Read implements Source.
func (c *Capture) Read() (*images.Buffer, error) {
	if c.closed {
		return nil, ErrSourceClosed
	}
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, io.EOF
	}
	return images.FromMat(c.frame)
}

// FrameCount implements Source.
func (c *Capture) FrameCount() (int, bool) {
	if c.live || c.closed {
		return 0, false
	}
	n := int(c.capture.Get(gocv.VideoCaptureFrameCount))
	return n, n > 0
}

// FPS returns the declared frame rate, or 0 when unknown.
func (c *Capture) FPS() float64 {
	if c.closed {
		return 0
	}
	return c.capture.Get(gocv.VideoCaptureFPS)
}

// Close implements Source.
func (c *Capture) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.frame.Close()
	return c.capture.Close()
}

func (c *Capture) String() string {
	return c.name
}

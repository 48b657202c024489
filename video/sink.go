package video

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pixelkit/codec"
	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/nvr-ai/go-pixelkit/util"
)

// Sink stores still frames.
type Sink interface {
	// Write stores b under the frame number n and returns where it went.
	Write(n int, b *images.Buffer) (string, error)
}

// DirSink writes frames into a directory as frame-<n>.<ext>.
type DirSink struct {
	Dir     string
	Options codec.Options
}

// NewDirSink creates dir if needed. An empty format defaults to jpeg.
func NewDirSink(dir string, opts codec.Options) (*DirSink, error) {
	if opts.Format == "" {
		opts.Format = codec.FormatJPEG
	}
	if _, err := codec.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %q", dir)
	}
	return &DirSink{Dir: dir, Options: opts}, nil
}

// Path returns the file that frame n is written to.
func (s *DirSink) Path(n int) string {
	return filepath.Join(s.Dir, util.FrameFileName(n, s.Options.Format.Ext()))
}

// Write implements Sink.
func (s *DirSink) Write(n int, b *images.Buffer) (string, error) {
	path := s.Path(n)
	if err := codec.Save(path, b, s.Options); err != nil {
		return "", err
	}
	return path, nil
}

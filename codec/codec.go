package codec

import (
	"bytes"
	"os"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-pixelkit/images"
)

// DefaultQuality is the lossy encoder quality used when Options.Quality is zero.
const DefaultQuality = 95

// ErrDecode is returned when bytes or a file cannot be decoded as an image.
var ErrDecode = errors.New("codec: decode failed")

// Options controls encoding.
type Options struct {
	// Format overrides the format implied by the destination path.
	Format Format `json:"format" yaml:"format"`
	// Quality is the lossy quality in [1,100]. Zero means DefaultQuality.
	Quality int `json:"quality" yaml:"quality"`
}

func (o Options) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return DefaultQuality
	}
	return o.Quality
}

// Load reads the image file at path as a 3-channel BGR buffer.
func Load(path string) (*images.Buffer, error) {
	m := gocv.IMRead(path, gocv.IMReadColor)
	defer m.Close()
	if m.Empty() {
		return &images.Buffer{}, errors.Wrapf(ErrDecode, "read %q", path)
	}
	return images.FromMat(m)
}

// Decode decodes encoded image bytes as a 3-channel BGR buffer. WebP payloads
// that the imaging backend cannot read fall back to the pure webp decoder.
func Decode(data []byte) (*images.Buffer, error) {
	if len(data) == 0 {
		return &images.Buffer{}, errors.Wrap(ErrDecode, "empty image data")
	}

	if m, err := gocv.IMDecode(data, gocv.IMReadColor); err == nil {
		defer m.Close()
		if !m.Empty() {
			return images.FromMat(m)
		}
	}

	img, werr := webp.Decode(bytes.NewReader(data))
	if werr != nil {
		return &images.Buffer{}, errors.Wrap(ErrDecode, werr.Error())
	}
	return images.FromImage(img), nil
}

// Encode renders b in the given format. Samples are clamped and rounded to
// 8 bits on the way out.
//
// Arguments:
//   - b: The buffer to encode (1 or 3 channels).
//   - opts: Format and quality. Format must be set.
//
// Returns:
//   - The encoded bytes.
//   - ErrUnsupportedFormat, ErrEmptyBuffer or an encoder error.
func Encode(b *images.Buffer, opts Options) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	switch opts.Format {
	case FormatWebP:
		var buf bytes.Buffer
		if err := webp.Encode(&buf, b.ToImage(), &webp.Options{Quality: float32(opts.quality())}); err != nil {
			return nil, errors.Wrap(err, "encode webp")
		}
		return buf.Bytes(), nil
	case FormatJPEG, FormatPNG:
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", opts.Format)
	}

	m, err := b.ToMat()
	if err != nil {
		return nil, err
	}
	defer m.Close()

	ext, params := gocv.PNGFileExt, []int{}
	if opts.Format == FormatJPEG {
		ext, params = gocv.JPEGFileExt, []int{gocv.IMWriteJpegQuality, opts.quality()}
	}
	native, err := gocv.IMEncodeWithParams(ext, m, params)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", opts.Format)
	}
	defer native.Close()

	out := make([]byte, native.Len())
	copy(out, native.GetBytes())
	return out, nil
}

// Save writes b to path. The format comes from opts.Format, or from the path
// extension when opts.Format is empty.
//
// @example
// err := codec.Save("out/frame-0001.jpg", frame, codec.Options{Quality: 90})
func Save(path string, b *images.Buffer, opts Options) error {
	if opts.Format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return err
		}
		opts.Format = f
	}

	data, err := Encode(b, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %q", path)
	}
	return nil
}

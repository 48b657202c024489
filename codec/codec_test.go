package codec

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-pixelkit/images"
)

func getTestBuffer(w, h int) *images.Buffer {
	b := images.NewBuffer(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, 0, float64(x%256))
			b.Set(x, y, 1, float64(y%256))
			b.Set(x, y, 2, 128)
		}
	}
	return b
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"jpg", FormatJPEG},
		{".JPEG", FormatJPEG},
		{"png", FormatPNG},
		{".webp", FormatWebP},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("bmp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	f, err := FormatFromPath("/tmp/out/frame-3.png")
	require.NoError(t, err)
	assert.Equal(t, ".png", f.Ext())
}

func TestInSampleSize(t *testing.T) {
	tests := []struct {
		name                       string
		w, h, reqW, reqH, expected int
	}{
		{"fits", 640, 480, 800, 600, 1},
		{"exact", 800, 600, 800, 600, 1},
		{"odd ratio bumped to even", 4000, 3000, 800, 600, 6},
		{"even ratio", 1600, 1200, 800, 600, 2},
		{"grows until it fits", 2500, 600, 800, 600, 4},
		{"invalid request", 100, 100, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InSampleSize(tt.w, tt.h, tt.reqW, tt.reqH)
			assert.Equal(t, tt.expected, got)
			if tt.reqW > 0 {
				assert.LessOrEqual(t, tt.w/got, tt.reqW)
				assert.LessOrEqual(t, tt.h/got, tt.reqH)
			}
		})
	}
}

func TestEncodeDecodePNGLossless(t *testing.T) {
	src := getTestBuffer(32, 16)

	data, err := Encode(src, Options{Format: FormatPNG})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	out, err := Decode(data)
	require.NoError(t, err)
	require.True(t, src.SameShape(out))
	assert.Equal(t, images.ComputeChecksum(src), images.ComputeChecksum(out))
}

func TestEncodeLossy(t *testing.T) {
	src := getTestBuffer(32, 32)
	for _, f := range []Format{FormatJPEG, FormatWebP} {
		data, err := Encode(src, Options{Format: f, Quality: 90})
		require.NoError(t, err, f)

		out, err := Decode(data)
		require.NoError(t, err, f)
		assert.Equal(t, 32, out.Width)
		assert.InDelta(t, 128, out.At(10, 10, 2), 8, f)
	}
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(getTestBuffer(4, 4), Options{Format: "tiff"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Encode(&images.Buffer{}, Options{Format: FormatPNG})
	assert.ErrorIs(t, err, images.ErrEmptyBuffer)

	_, err = Decode([]byte("not an image"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	src := getTestBuffer(20, 10)
	path := filepath.Join(dir, "frame-1.png")

	require.NoError(t, Save(path, src, Options{}))
	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, images.ComputeChecksum(src), images.ComputeChecksum(out))

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrDecode)

	err = Save(filepath.Join(dir, "frame.bmp"), src, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeSampled(t *testing.T) {
	data, err := Encode(getTestBuffer(400, 300), Options{Format: FormatPNG})
	require.NoError(t, err)

	out, err := DecodeSampled(data, 100, 100, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, out.Width, 100)
	assert.LessOrEqual(t, out.Height, 100)
	assert.Equal(t, 3, out.Channels)

	_, err = DecodeSampled([]byte("garbage"), 100, 100, nil)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeSampledRetry(t *testing.T) {
	data, err := Encode(getTestBuffer(400, 300), Options{Format: FormatPNG})
	require.NoError(t, err)
	first := InSampleSize(400, 300, 100, 100)

	tests := []struct {
		name      string
		failCalls int
		wantErr   bool
	}{
		{"second attempt succeeds", 1, false},
		{"both attempts fail", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var samples []int
			decodeAt = func(data []byte, width, height, sample int) (*images.Buffer, error) {
				samples = append(samples, sample)
				if len(samples) <= tt.failCalls {
					return nil, errors.New("out of memory")
				}
				return images.NewBuffer(width/sample, height/sample, 3), nil
			}
			t.Cleanup(func() { decodeAt = decodeVips })

			log, hook := logtest.NewNullLogger()
			out, err := DecodeSampled(data, 100, 100, log)

			assert.Equal(t, []int{first, first + RetryStep}, samples)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDecode)
				require.NotNil(t, hook.LastEntry())
				assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 400/(first+RetryStep), out.Width)
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		})
	}
}

package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-pixelkit/common"
	"github.com/nvr-ai/go-pixelkit/detector"
	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/nvr-ai/go-pixelkit/test"
)

func gradient(w, h int) *images.Buffer {
	b := images.NewBuffer(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64((x*5 + y*3) % 256)
			b.Set(x, y, 0, v)
			b.Set(x, y, 1, v)
			b.Set(x, y, 2, v)
		}
	}
	return b
}

func TestCompareSameImage(t *testing.T) {
	img := gradient(64, 48)
	cmp := NewComparator(detector.Static{{X: 8, Y: 8, Width: 40, Height: 30}})

	res, err := cmp.Compare(img, img)
	require.NoError(t, err)
	assert.True(t, res.Detected)
	assert.InDelta(t, 1.0, res.Correlation, 1e-6)
	assert.True(t, res.Match)
}

func TestCompareDifferentImages(t *testing.T) {
	dark := images.NewUniform(32, 32, 3, 10)
	bright := gradient(32, 32)
	cmp := &Comparator{Detector: detector.Whole{}, Bins: 64}

	res, err := cmp.Compare(dark, bright)
	require.NoError(t, err)
	assert.True(t, res.Detected)
	assert.Less(t, res.Correlation, DefaultThreshold)
	assert.False(t, res.Match)
}

func TestCompareNoDetection(t *testing.T) {
	img := gradient(16, 16)
	cmp := NewComparator(detector.Static{})

	res, err := cmp.Compare(img, img)
	require.NoError(t, err)
	assert.Equal(t, NoMatch, res)
	assert.False(t, res.Match)
}

func TestCompareOnlyFirstBox(t *testing.T) {
	// The second box covers a different region; only the first is compared.
	a := gradient(40, 40)
	b := a.Clone()
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			b.Set(x, y, 0, 0)
			b.Set(x, y, 1, 0)
			b.Set(x, y, 2, 0)
		}
	}
	cmp := NewComparator(detector.Static{
		{X: 0, Y: 0, Width: 16, Height: 16},
		{X: 20, Y: 20, Width: 20, Height: 20},
	})

	res, err := cmp.Compare(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Correlation, 1e-6)
}

func TestCompareEmpty(t *testing.T) {
	cmp := NewComparator(detector.Whole{})
	_, err := cmp.Compare(&images.Buffer{}, gradient(4, 4))
	assert.ErrorIs(t, err, images.ErrEmptyBuffer)

	_, err = (&Comparator{}).Compare(gradient(4, 4), gradient(4, 4))
	assert.Error(t, err)
}

func TestHistogram(t *testing.T) {
	b := images.NewBuffer(10, 10, 1)
	for i := 0; i < 50; i++ {
		b.Pix[i] = 200
	}

	h, err := Histogram(b, 256)
	require.NoError(t, err)
	require.Len(t, h, 256)
	assert.Equal(t, 50.0, h[0])
	assert.Equal(t, 50.0, h[200])

	h, err = Histogram(b, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 50}, h)

	_, err = Histogram(b, 0)
	assert.Error(t, err)
	_, err = Histogram(images.NewBuffer(2, 2, 2), 8)
	assert.ErrorIs(t, err, images.ErrChannelMismatch)
}

func TestCompareDetectorCalls(t *testing.T) {
	img := gradient(32, 32)

	// First image detected, second not: the second detector call ends it.
	d := &test.MockDetector{Boxes: [][]common.Box{{{X: 0, Y: 0, Width: 8, Height: 8}}, nil}}
	res, err := NewComparator(d).Compare(img, img)
	require.NoError(t, err)
	assert.Equal(t, NoMatch, res)
	assert.Equal(t, 2, d.Calls())

	// Nothing on the first image: the second is never examined.
	d = &test.MockDetector{}
	_, err = NewComparator(d).Compare(img, img)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Calls())

	d = &test.MockDetector{ShouldError: true}
	_, err = NewComparator(d).Compare(img, img)
	assert.Error(t, err)
}

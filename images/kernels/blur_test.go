package kernels

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genBuffer fills a buffer with deterministic integer samples in [0,255].
func genBuffer(w, h, ch int) *images.Buffer {
	b := images.NewBuffer(w, h, ch)
	rng := rand.New(rand.NewSource(1))
	for i := range b.Pix {
		b.Pix[i] = float64(rng.Intn(256))
	}
	return b
}

// averageNaive is the direct O(k²) window mean used as a reference.
func averageNaive(src *images.Buffer, cellSize int) *images.Buffer {
	size := NormalizeCellSize(cellSize)
	half := size >> 1
	dst := images.NewBuffer(src.Width, src.Height, src.Channels)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			for c := 0; c < src.Channels; c++ {
				var sum float64
				var cnt int
				for sy := y - half; sy <= y+half; sy++ {
					for sx := x - half; sx <= x+half; sx++ {
						if src.In(sx, sy) {
							sum += src.At(sx, sy, c)
							cnt++
						}
					}
				}
				dst.Set(x, y, c, sum/float64(cnt))
			}
		}
	}
	return dst
}

func TestNormalizeCellSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 3}, {3, 3}, {4, 5}, {10, 11}, {11, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCellSize(tt.in), "cellSize %d", tt.in)
	}
}

func TestGaussianKernelSumsToHundred(t *testing.T) {
	for _, size := range []int{1, 3, 5, 7, 11, 15} {
		for _, variance := range []float64{0.25, 1, 1.5, 4, 400} {
			k := Gaussian(size, variance)
			assert.Equal(t, size, k.Size)
			assert.InDelta(t, GaussianWeightSum, k.Sum(), 1e-9, "size=%d variance=%v", size, variance)
		}
	}
}

func TestGaussianKernelShape(t *testing.T) {
	k := Gaussian(4, 2) // normalized to 5
	require.Equal(t, 5, k.Size)
	center := k.At(2, 2)
	for i := 0; i < k.Size; i++ {
		for j := 0; j < k.Size; j++ {
			assert.LessOrEqual(t, k.At(i, j), center)
			assert.InDelta(t, k.At(i, j), k.At(k.Size-1-i, k.Size-1-j), 1e-12, "kernel must be symmetric")
		}
	}

	degenerate := Gaussian(3, 0)
	assert.InDelta(t, GaussianWeightSum, degenerate.At(1, 1), 1e-12)
	assert.InDelta(t, GaussianWeightSum, degenerate.Sum(), 1e-12)
}

func TestAverageCellSizeOneIsIdentity(t *testing.T) {
	src := genBuffer(17, 9, 3)
	out, err := Average(src, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)

	out.Pix[0] = -1
	assert.NotEqual(t, -1.0, src.Pix[0], "result must not alias the input")
}

func TestAverageUniformFieldBorderPolicy(t *testing.T) {
	src := images.NewUniform(3, 3, 3, 100)
	out, err := Average(src, 3)
	require.NoError(t, err)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			for c := 0; c < 3; c++ {
				assert.Equal(t, 100.0, out.At(x, y, c), "pixel (%d,%d,%d)", x, y, c)
			}
		}
	}
}

func TestAverageBorderExcludesOutOfBounds(t *testing.T) {
	src := images.NewBuffer(3, 1, 1)
	src.Pix = []float64{0, 90, 0}
	out, err := Average(src, 3)
	require.NoError(t, err)
	// Corner windows see two in-bounds samples, the middle sees three.
	assert.InDelta(t, 45.0, out.Pix[0], 1e-9)
	assert.InDelta(t, 30.0, out.Pix[1], 1e-9)
	assert.InDelta(t, 45.0, out.Pix[2], 1e-9)
}

func TestAverageMatchesNaive(t *testing.T) {
	src := genBuffer(23, 14, 3)
	for _, size := range []int{2, 3, 5, 9, 31} {
		got, err := Average(src, size)
		require.NoError(t, err)
		want := averageNaive(src, size)
		for i := range want.Pix {
			if math.Abs(want.Pix[i]-got.Pix[i]) > 1e-9 {
				t.Fatalf("size %d: sample %d = %v, want %v", size, i, got.Pix[i], want.Pix[i])
			}
		}
	}
}

func TestAverageEmpty(t *testing.T) {
	_, err := Average(nil, 3)
	assert.ErrorIs(t, err, images.ErrEmptyBuffer)
	_, err = Average(&images.Buffer{}, 3)
	assert.ErrorIs(t, err, images.ErrEmptyBuffer)
}

func TestConvolveLocalRenormalization(t *testing.T) {
	src := images.NewUniform(6, 4, 3, 42)
	out, err := GaussianBlur(src, 5, 1.5)
	require.NoError(t, err)
	for i, v := range out.Pix {
		assert.InDelta(t, 42.0, v, 1e-9, "sample %d", i)
	}
}

func TestConvolveBoxMatchesAverage(t *testing.T) {
	src := genBuffer(11, 7, 1)
	viaKernel, err := Convolve(src, Box(3))
	require.NoError(t, err)
	viaAverage, err := Average(src, 3)
	require.NoError(t, err)
	for i := range viaAverage.Pix {
		assert.InDelta(t, viaAverage.Pix[i], viaKernel.Pix[i], 1e-9)
	}
}

func TestSharpen(t *testing.T) {
	flat := images.NewUniform(5, 5, 3, 80)
	out, err := Sharpen(flat, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, flat.Pix, out.Pix, "a flat field has no high frequencies")

	spike := images.NewUniform(3, 3, 1, 0)
	spike.Set(1, 1, 0, 90)
	out, err = Sharpen(spike, 3, 1)
	require.NoError(t, err)
	// mean at the center is 10, so 90 + (90-10) = 170.
	assert.InDelta(t, 170.0, out.At(1, 1, 0), 1e-9)
	// Corners: mean 22.5 over 4 samples, 0 + (0-22.5) = -22.5; results stay unclamped.
	assert.InDelta(t, -22.5, out.At(0, 0, 0), 1e-9)
}

func TestMinFilter(t *testing.T) {
	src := images.NewUniform(5, 5, 1, 200)
	src.Set(0, 0, 0, 10)
	out, err := MinFilter(src, 3)
	require.NoError(t, err)

	assert.Equal(t, 10.0, out.At(0, 0, 0))
	assert.Equal(t, 10.0, out.At(1, 1, 0))
	assert.Equal(t, 200.0, out.At(2, 2, 0))
	assert.Equal(t, 200.0, out.At(4, 4, 0))

	same, err := MinFilter(src, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, same.Pix)
}

package dehaze

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBuffer(w, h, ch int, seed int64) *images.Buffer {
	b := images.NewBuffer(w, h, ch)
	rng := rand.New(rand.NewSource(seed))
	for i := range b.Pix {
		b.Pix[i] = float64(rng.Intn(256))
	}
	return b
}

func TestDarkChannelRange(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		src := randomBuffer(19, 13, 3, seed)
		dark, err := DarkChannel(src, 5)
		require.NoError(t, err)
		require.Equal(t, 1, dark.Channels)
		require.Equal(t, src.Width, dark.Width)
		require.Equal(t, src.Height, dark.Height)
		for _, v := range dark.Pix {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 255.0)
		}
	}
}

func TestDarkChannelMinimum(t *testing.T) {
	src := images.NewUniform(4, 4, 3, 200)
	copy(src.Pixel(3, 3), []float64{150, 30, 90})

	dark, err := DarkChannel(src, 3)
	require.NoError(t, err)
	assert.Equal(t, 30.0, dark.At(3, 3, 0))
	assert.Equal(t, 30.0, dark.At(2, 2, 0), "erosion spreads the minimum to neighbors")
	assert.Equal(t, 200.0, dark.At(0, 0, 0))

	pointwise, err := DarkChannel(src, 1)
	require.NoError(t, err)
	assert.Equal(t, 200.0, pointwise.At(2, 2, 0))
}

func TestDehazeZeroDarkChannelIsIdentity(t *testing.T) {
	src := randomBuffer(9, 7, 3, 3)
	for i := 0; i < len(src.Pix); i += 3 {
		src.Pix[i] = 0 // blue channel zero everywhere -> dark channel zero
	}

	out, err := Dehaze(src, 3)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestDehazeGuardsFullDensity(t *testing.T) {
	src := images.NewUniform(3, 3, 3, 255)
	out, err := Dehaze(src, 3)
	require.NoError(t, err)
	want := (255 - Airlight*MaxDensity) / (1 - MaxDensity)
	for _, v := range out.Pix {
		assert.InDelta(t, want, v, 1e-6)
	}
}

func TestDensity(t *testing.T) {
	assert.Equal(t, 0.0, Density(0))
	assert.Equal(t, 0.0, Density(-4))
	assert.InDelta(t, 0.5, Density(127.5), 1e-12)
	assert.Equal(t, MaxDensity, Density(255))
}

func TestDehazeEmpty(t *testing.T) {
	_, err := Dehaze(&images.Buffer{}, 3)
	assert.ErrorIs(t, err, images.ErrEmptyBuffer)
}

package adjust

import (
	"testing"

	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(w, h, ch int) *images.Buffer {
	b := images.NewBuffer(w, h, ch)
	for i := range b.Pix {
		b.Pix[i] = float64((i * 7) % 256)
	}
	return b
}

func TestBaseLevelIsIdentity(t *testing.T) {
	src := ramp(8, 6, 3)
	before := images.ComputeChecksum(src)

	for name, fn := range map[string]func(*images.Buffer, int) (*images.Buffer, error){
		"brightness": Brightness,
		"contrast":   Contrast,
		"saturation": Saturation,
	} {
		out, err := fn(src, Base)
		require.NoError(t, err, name)
		assert.Same(t, src, out, "%s at Base must return the input", name)
		assert.Equal(t, before, images.ComputeChecksum(out), name)
	}
}

func TestBrightness(t *testing.T) {
	src := images.NewUniform(2, 2, 3, 100)

	dark, err := Brightness(src, 0)
	require.NoError(t, err)
	for _, v := range dark.Pix {
		assert.Equal(t, 0.0, v)
	}

	half, err := Brightness(src, 63)
	require.NoError(t, err)
	assert.InDelta(t, 100*63.0/127.0, half.Pix[0], 1e-9)

	bright, err := Brightness(src, Max)
	require.NoError(t, err)
	for _, v := range bright.Pix {
		assert.Equal(t, 255.0, v)
	}

	up, err := Brightness(src, 191)
	require.NoError(t, err)
	assert.InDelta(t, 255-100*64.0/127.0, up.Pix[0], 1e-9)

	assert.Equal(t, 100.0, src.Pix[0], "input must not be modified")
}

func TestContrast(t *testing.T) {
	src := images.NewBuffer(2, 1, 1)
	src.Pix = []float64{50, 150} // mid = 100

	flat, err := Contrast(src, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 100}, flat.Pix)

	less, err := Contrast(src, 63)
	require.NoError(t, err)
	a := 63.0 / 127.0
	assert.InDelta(t, a*50+100*(1-a), less.Pix[0], 1e-9)

	more, err := Contrast(src, 191)
	require.NoError(t, err)
	a = 127.0 / 64.0
	assert.InDelta(t, a*50+100*(1-a), more.Pix[0], 1e-9)
	assert.InDelta(t, a*150+100*(1-a), more.Pix[1], 1e-9)

	// Max is treated as Max-1 so the gain stays finite; results are unclamped.
	top, err := Contrast(src, Max)
	require.NoError(t, err)
	assert.InDelta(t, 127*50.0+100*(1-127.0), top.Pix[0], 1e-9)
	assert.Less(t, top.Pix[0], 0.0)
}

func TestLevelValidation(t *testing.T) {
	src := ramp(2, 2, 3)
	_, err := Contrast(src, -1)
	assert.ErrorIs(t, err, ErrLevelOutOfRange)
	_, err = Brightness(src, 256)
	assert.ErrorIs(t, err, ErrLevelOutOfRange)
	_, err = Saturation(nil, 10)
	assert.ErrorIs(t, err, images.ErrEmptyBuffer)
}

func TestSaturationGrayIsUnchanged(t *testing.T) {
	gray := ramp(4, 4, 1)
	out, err := Saturation(gray, 10)
	require.NoError(t, err)
	assert.Same(t, gray, out)
}

func TestSaturationToZeroProducesGray(t *testing.T) {
	src := images.NewBuffer(2, 1, 3)
	copy(src.Pixel(0, 0), []float64{0, 0, 255}) // red
	copy(src.Pixel(1, 0), []float64{255, 0, 0}) // blue

	out, err := Saturation(src, 0)
	require.NoError(t, err)
	require.Equal(t, 3, out.Channels)
	for x := 0; x < 2; x++ {
		px := out.Pixel(x, 0)
		assert.InDelta(t, px[0], px[1], 1, "pixel %d", x)
		assert.InDelta(t, px[1], px[2], 1, "pixel %d", x)
	}
}

func TestSaturationUpKeepsSaturatedColor(t *testing.T) {
	src := images.NewBuffer(1, 1, 3)
	copy(src.Pixel(0, 0), []float64{0, 0, 255})

	out, err := Saturation(src, Max)
	require.NoError(t, err)
	assert.InDelta(t, 0, out.At(0, 0, 0), 1)
	assert.InDelta(t, 0, out.At(0, 0, 1), 1)
	assert.InDelta(t, 255, out.At(0, 0, 2), 1)
}

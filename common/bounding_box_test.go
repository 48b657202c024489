package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxRectRoundTrip(t *testing.T) {
	r := image.Rect(10, 20, 60, 45)
	b := BoxFromRect(r)
	assert.Equal(t, Box{X: 10, Y: 20, Width: 50, Height: 25}, b)
	assert.Equal(t, r, b.ToRect())
	assert.Equal(t, float32(1250), b.Area())
}

func TestBoxToRectRounds(t *testing.T) {
	b := Box{X: 100.4, Y: 100.6, Width: 50, Height: 20}
	assert.Equal(t, image.Rect(100, 101, 150, 121), b.ToRect())
}

func TestBoxIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want float32
	}{
		{"identical", Box{0, 0, 10, 10}, Box{0, 0, 10, 10}, 1},
		{"disjoint", Box{0, 0, 10, 10}, Box{20, 20, 10, 10}, 0},
		{"quarter", Box{0, 0, 100, 100}, Box{50, 50, 100, 100}, 2500.0 / 17500.0},
		{"empty", Box{}, Box{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.IoU(tt.b), 1e-6)
		})
	}
}

func TestBoxScaleAndClip(t *testing.T) {
	b := Box{X: 10, Y: 5, Width: 20, Height: 8}
	assert.Equal(t, Box{X: 40, Y: 20, Width: 80, Height: 32}, b.Scale(4))
	assert.Equal(t, Box{X: 3.33, Y: 1.67, Width: 6.67, Height: 2.67}, b.Scale(1.0/3))

	clipped := Box{X: -5, Y: -5, Width: 20, Height: 20}.Clip(image.Rect(0, 0, 10, 10))
	assert.Equal(t, Box{X: 0, Y: 0, Width: 10, Height: 10}, clipped)
	assert.True(t, Box{X: 50, Y: 50, Width: 5, Height: 5}.Clip(image.Rect(0, 0, 10, 10)).Empty())
}

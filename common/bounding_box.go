package common

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// Box is a detection rectangle in pixel coordinates: top-left corner plus size.
type Box struct {
	X      float32 `json:"x" yaml:"x"`
	Y      float32 `json:"y" yaml:"y"`
	Width  float32 `json:"width" yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// BoxFromRect converts an image.Rectangle to a Box.
func BoxFromRect(r image.Rectangle) Box {
	r = r.Canon()
	return Box{
		X:      float32(r.Min.X),
		Y:      float32(r.Min.Y),
		Width:  float32(r.Dx()),
		Height: float32(r.Dy()),
	}
}

func (b Box) String() string {
	return fmt.Sprintf("Box (%.1f, %.1f) %.1fx%.1f", b.X, b.Y, b.Width, b.Height)
}

// ToRect converts the box to an image.Rectangle.
//
// Coordinates are rounded to the nearest pixel, so a box produced by Scale
// from an integral rectangle maps back onto whole pixels.
//
// Returns:
// - An image.Rectangle with canonicalized coordinates.
//
// @example
// box := Box{X: 100.4, Y: 100.6, Width: 50, Height: 20}
// rect := box.ToRect() // (100,101)-(150,121)
func (b Box) ToRect() image.Rectangle {
	x0, y0 := math32.Round(b.X), math32.Round(b.Y)
	x1, y1 := math32.Round(b.X+b.Width), math32.Round(b.Y+b.Height)
	return image.Rect(int(x0), int(y0), int(x1), int(y1)).Canon()
}

// Area returns Width*Height, or zero for degenerate boxes.
func (b Box) Area() float32 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Empty reports whether the box covers no whole pixel.
func (b Box) Empty() bool {
	return b.ToRect().Empty()
}

// Scale multiplies every coordinate by s.
//
// Detectors that run on a downscaled frame use this to map their boxes back
// onto the full-resolution frame.
//
// Arguments:
// - s: The scale factor (full size / detection size).
//
// Returns:
// - The scaled box, with coordinates rounded to 1/100 of a pixel.
//
// @example
// full := small.Scale(4)
func (b Box) Scale(s float32) Box {
	round := func(v float32) float32 { return math32.Round(v*s*100) / 100 }
	return Box{X: round(b.X), Y: round(b.Y), Width: round(b.Width), Height: round(b.Height)}
}

// Clip restricts the box to bounds.
func (b Box) Clip(bounds image.Rectangle) Box {
	return BoxFromRect(b.ToRect().Intersect(bounds))
}

// Intersection calculates the intersection area between two boxes.
//
// Arguments:
// - other: The other box to calculate intersection with.
//
// Returns:
// - The area of intersection in pixels.
//
// @example
// box1 := Box{X: 0, Y: 0, Width: 100, Height: 100}
// box2 := Box{X: 50, Y: 50, Width: 100, Height: 100}
// area := box1.Intersection(box2) // Returns 2500.0 (50x50 overlap)
func (b Box) Intersection(other Box) float32 {
	x0 := math32.Max(b.X, other.X)
	y0 := math32.Max(b.Y, other.Y)
	x1 := math32.Min(b.X+b.Width, other.X+other.Width)
	y1 := math32.Min(b.Y+b.Height, other.Y+other.Height)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return (x1 - x0) * (y1 - y0)
}

// Union calculates the union area between two boxes.
func (b Box) Union(other Box) float32 {
	return b.Area() + other.Area() - b.Intersection(other)
}

// IoU calculates the Intersection over Union between two boxes.
//
// Returns:
// - The IoU value between 0 and 1, or 0 when both boxes are empty.
//
// @example
// box1 := Box{X: 0, Y: 0, Width: 100, Height: 100}
// box2 := Box{X: 50, Y: 50, Width: 100, Height: 100}
// iou := box1.IoU(box2) // Returns ~0.143 (2500/17500)
func (b Box) IoU(other Box) float32 {
	u := b.Union(other)
	if u <= 0 {
		return 0
	}
	return b.Intersection(other) / u
}

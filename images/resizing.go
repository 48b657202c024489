package images

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// NormalizedSize is the edge length used by Normalize.
const NormalizedSize = 28

// Resize scales b to exactly width x height using Lanczos resampling.
//
// Arguments:
//   - b: The buffer to resize.
//   - width: The width to resize the buffer to.
//   - height: The height to resize the buffer to.
//
// Returns:
//   - *Buffer: The resized buffer, with b's channel count.
//   - error: ErrEmptyBuffer, or an error for non-positive dimensions.
func Resize(b *Buffer, width, height int) (*Buffer, error) {
	if b.Empty() {
		return &Buffer{}, ErrEmptyBuffer
	}
	if width <= 0 || height <= 0 {
		return &Buffer{}, errors.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}
	if width == b.Width && height == b.Height {
		return b.Clone(), nil
	}

	resized := resize.Resize(uint(width), uint(height), b.ToImage(), resize.Lanczos3)
	return restoreChannels(FromImage(resized), b.Channels), nil
}

// Thumbnail scales b down, preserving aspect ratio, so that it fits inside
// maxWidth x maxHeight. Buffers that already fit are returned as a copy.
func Thumbnail(b *Buffer, maxWidth, maxHeight int) (*Buffer, error) {
	if b.Empty() {
		return &Buffer{}, ErrEmptyBuffer
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return &Buffer{}, errors.Errorf("invalid bounds: width=%d, height=%d", maxWidth, maxHeight)
	}
	if b.Width <= maxWidth && b.Height <= maxHeight {
		return b.Clone(), nil
	}

	thumb := resize.Thumbnail(uint(maxWidth), uint(maxHeight), b.ToImage(), resize.Bilinear)
	return restoreChannels(FromImage(thumb), b.Channels), nil
}

// FitSize returns the dimensions of a width x height image scaled so that its
// longer edge equals square. Sizes that already fit are returned unchanged.
//
// @example
// FitSize(1920, 1080, 480) // (480, 270)
func FitSize(width, height, square int) image.Point {
	if width <= square && height <= square {
		return image.Pt(width, height)
	}
	longest := width
	if height > longest {
		longest = height
	}
	ratio := float64(square) / float64(longest)
	return image.Pt(int(float64(width)*ratio), int(float64(height)*ratio))
}

// Normalize resizes b to NormalizedSize x NormalizedSize.
func Normalize(b *Buffer) (*Buffer, error) {
	return Resize(b, NormalizedSize, NormalizedSize)
}

// restoreChannels collapses a BGR buffer back to a single channel when the
// source was gray. ToImage replicates gray into all three channels, so any
// channel carries the source samples.
func restoreChannels(b *Buffer, channels int) *Buffer {
	if channels != 1 || b.Channels == 1 {
		return b
	}
	gray, err := b.Channel(0)
	if err != nil {
		return b
	}
	return gray
}

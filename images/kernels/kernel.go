// Package kernels implements windowed filters over images.Buffer.
//
// Every filter uses the same border policy: window cells that fall outside the
// buffer are excluded from both the accumulated value and its normalization
// (count or weight sum). Border pixels therefore average fewer samples than
// interior pixels instead of seeing zero padding or replicated edges.
package kernels

import (
	"math"
)

// GaussianWeightSum is the total weight of a kernel built by Gaussian.
const GaussianWeightSum = 100.0

// Kernel is a square weight matrix with an odd side length.
type Kernel struct {
	// Size is the side length. Always odd.
	Size int
	// Weights holds Size*Size weights, row-major.
	Weights []float64
}

// NormalizeCellSize maps a requested window side to the odd size actually
// used: even sizes are incremented by one and sizes below one become one.
func NormalizeCellSize(cellSize int) int {
	if cellSize < 1 {
		return 1
	}
	if cellSize%2 == 0 {
		return cellSize + 1
	}
	return cellSize
}

// Half returns the window offset (Size-1)/2.
func (k Kernel) Half() int {
	return (k.Size - 1) / 2
}

// At returns the weight at kernel row i, column j.
func (k Kernel) At(i, j int) float64 {
	return k.Weights[i*k.Size+j]
}

// Sum returns the total of all weights.
func (k Kernel) Sum() float64 {
	var s float64
	for _, w := range k.Weights {
		s += w
	}
	return s
}

// Box returns a kernel of ones with the normalized side length.
func Box(cellSize int) Kernel {
	size := NormalizeCellSize(cellSize)
	k := Kernel{Size: size, Weights: make([]float64, size*size)}
	for i := range k.Weights {
		k.Weights[i] = 1
	}
	return k
}

// Gaussian builds a cellSize x cellSize kernel from a 2-D Gaussian density
// centered on the middle cell, scaled so the weights sum to GaussianWeightSum.
//
// Arguments:
// - cellSize: Requested side length, normalized to odd.
// - variance: Variance of the density. Must be positive.
//
// Returns:
// - The normalized kernel. A non-positive variance degenerates to a single
// unit impulse scaled to GaussianWeightSum.
//
// @example
// k := Gaussian(5, 1.5)
// fmt.Println(k.Sum()) // 100
func Gaussian(cellSize int, variance float64) Kernel {
	size := NormalizeCellSize(cellSize)
	k := Kernel{Size: size, Weights: make([]float64, size*size)}
	half := k.Half()

	if variance <= 0 {
		k.Weights[half*size+half] = GaussianWeightSum
		return k
	}

	var sum float64
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			w := gaussianDensity(float64(half-i), float64(half-j), variance)
			k.Weights[i*size+j] = w
			sum += w
		}
	}
	for i := range k.Weights {
		k.Weights[i] = k.Weights[i] * GaussianWeightSum / sum
	}
	return k
}

func gaussianDensity(dx, dy, variance float64) float64 {
	return 1.0 / (2 * math.Pi * variance) * math.Exp(-(dx*dx+dy*dy)/(2*variance))
}

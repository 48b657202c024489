// Package detector - region detectors that feed the histogram comparator and
// the face-capture sampler.
package detector

import (
	"sort"

	"github.com/samber/lo"

	"github.com/nvr-ai/go-pixelkit/common"
	"github.com/nvr-ai/go-pixelkit/images"
)

// Detector returns the regions of interest found in a buffer. Callers may only
// rely on the first box being usable; no other ordering is implied.
type Detector interface {
	Detect(b *images.Buffer) ([]common.Box, error)
}

// Static is a Detector that returns the same boxes for every buffer, clipped
// to the buffer bounds. An empty Static never detects anything.
type Static []common.Box

// Detect implements Detector.
func (s Static) Detect(b *images.Buffer) ([]common.Box, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	bounds := b.Bounds()
	boxes := lo.Map(s, func(box common.Box, _ int) common.Box { return box.Clip(bounds) })
	return lo.Reject(boxes, func(box common.Box, _ int) bool { return box.Empty() }), nil
}

// Whole is a Detector that reports the full buffer as a single region.
type Whole struct{}

// Detect implements Detector.
func (Whole) Detect(b *images.Buffer) ([]common.Box, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return []common.Box{common.BoxFromRect(b.Bounds())}, nil
}

// Suppress removes boxes that overlap a larger kept box by more than
// iouThreshold. Boxes are visited largest first; the result keeps that order.
//
// Arguments:
//   - boxes: Candidate boxes. The slice is not modified.
//   - iouThreshold: Overlap above which the smaller box is dropped.
//
// Returns:
//   - The surviving boxes, or nil when boxes is empty.
func Suppress(boxes []common.Box, iouThreshold float32) []common.Box {
	n := len(boxes)
	if n == 0 {
		return nil
	}

	sorted := make([]common.Box, n)
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Area() > sorted[j].Area() })

	used := make([]bool, n)
	kept := make([]common.Box, 0, n)
	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		kept = append(kept, sorted[i])
		used[i] = true
		for j := i + 1; j < n; j++ {
			if !used[j] && sorted[i].IoU(sorted[j]) > iouThreshold {
				used[j] = true
			}
		}
	}
	return kept
}

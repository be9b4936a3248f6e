// Package boxes - bounding box types and IoU for grid detectors.
package boxes

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Box is a center-format bounding box with a confidence score.
// Coordinates are in arbitrary but consistent units; decoded boxes
// are normalized to [0,1].
type Box struct {
	X, Y float32 // center
	W, H float32
	Conf float32
}

func (b Box) String() string {
	return fmt.Sprintf("box (%.3f, %.3f) %.3fx%.3f conf=%.3f", b.X, b.Y, b.W, b.H, b.Conf)
}

// IoU calculates the Intersection over Union between two boxes.
//
// The intersection corners are the max of the top-left corners and the
// min of the bottom-right corners; a non-positive width or height means
// the boxes do not overlap. The union follows inclusion-exclusion:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
//
// Returns:
//   - float32: A value between 0.0 and 1.0.
func (b Box) IoU(o Box) float32 {
	ix1 := math32.Max(b.X-b.W/2, o.X-o.W/2)
	iy1 := math32.Max(b.Y-b.H/2, o.Y-o.H/2)
	ix2 := math32.Min(b.X+b.W/2, o.X+o.W/2)
	iy2 := math32.Min(b.Y+b.H/2, o.Y+o.H/2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	unionArea := b.W*b.H + o.W*o.H - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}

// ClassifiedBox is a Box plus its class-probability vector.
type ClassifiedBox struct {
	Box
	// Probs holds one probability per class.
	Probs []float32
}

// Class returns the argmax of the probability vector. Ties are broken
// deterministically toward the lowest index. Returns -1 for an empty
// vector.
func (c ClassifiedBox) Class() int {
	best := -1
	bestProb := math32.Inf(-1)
	for i, p := range c.Probs {
		if p > bestProb {
			bestProb = p
			best = i
		}
	}
	return best
}

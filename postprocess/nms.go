// Package postprocess - duplicate suppression for decoded detections.
package postprocess

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/Darkpoppy/tf2-YOLO/boxes"
)

// NMS performs greedy Non-Maximum Suppression.
//
// Detections are visited in order of descending confidence; each kept
// box suppresses every remaining box overlapping it above iouThreshold.
// Suppression is class-agnostic.
//
// Arguments:
//   - dets: Detections in any order; the input slice is not modified.
//   - iouThreshold: IoU above which overlapping boxes are suppressed.
//
// Returns:
//   - Kept detections sorted by descending confidence. Nil when dets is
//     empty.
func NMS(dets []boxes.ClassifiedBox, iouThreshold float32) []boxes.ClassifiedBox {
	n := len(dets)
	if n == 0 {
		return nil
	}

	sorted := make([]boxes.ClassifiedBox, n)
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Conf > sorted[j].Conf
	})

	used := make([]bool, n)
	filtered := make([]boxes.ClassifiedBox, 0, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := sorted[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if anchor.IoU(sorted[j].Box) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}

// SoftNMS performs Soft-NMS with gaussian decay.
//
// Instead of discarding overlaps outright, each selected box decays the
// confidence of boxes overlapping it above iouThreshold by
// exp(-iou²/sigma). Decayed detections below confThreshold are dropped
// at the end.
//
// Arguments:
//   - dets: Detections in any order; the input slice is not modified.
//   - iouThreshold: IoU above which a box's confidence is decayed.
//   - confThreshold: Final confidence cutoff after decay.
//   - sigma: Gaussian decay parameter.
//
// Returns:
//   - Surviving detections sorted by descending confidence.
func SoftNMS(dets []boxes.ClassifiedBox, iouThreshold, confThreshold, sigma float32) []boxes.ClassifiedBox {
	n := len(dets)
	if n == 0 {
		return nil
	}

	work := make([]boxes.ClassifiedBox, n)
	copy(work, dets)

	for i := 0; i < n; i++ {
		// Bring the highest remaining confidence to position i.
		maxIdx := i
		for j := i + 1; j < n; j++ {
			if work[j].Conf > work[maxIdx].Conf {
				maxIdx = j
			}
		}
		work[i], work[maxIdx] = work[maxIdx], work[i]

		for j := i + 1; j < n; j++ {
			iou := work[i].IoU(work[j].Box)
			if iou >= iouThreshold {
				work[j].Conf *= math32.Exp(-(iou * iou) / sigma)
			}
		}
	}

	filtered := make([]boxes.ClassifiedBox, 0, n)
	for _, d := range work {
		if d.Conf >= confThreshold {
			filtered = append(filtered, d)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Conf > filtered[j].Conf
	})

	return filtered
}

package eval

import (
	"github.com/pkg/errors"
)

// APTable holds one average precision per class plus their unweighted
// mean.
type APTable struct {
	ClassNames []string
	AP         []float64
	// MAP is the mean of AP across classes.
	MAP float64
}

var (
	voc2007Recalls = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}
	voc2012Recalls = []float64{0, 0.14, 0.29, 0.43, 0.57, 0.71, 1}
)

// MAP computes the average precision per class under the given
// integration policy and the mean across classes.
//
// Arguments:
//   - mode: One of MAPVOC2007, MAPVOC2012, MAPArea, MAPSmoothArea.
//
// Returns:
//   - The AP table, or an error for an unknown mode.
func (pc *PRCurve) MAP(mode MAPMode) (*APTable, error) {
	classNum := len(pc.classNames)
	aps := make([]float64, classNum)

	switch mode {
	case MAPArea, MAPSmoothArea:
		for c := 0; c < classNum; c++ {
			precisions := pc.precisions[c]
			if mode == MAPSmoothArea {
				precisions, _ = pc.Smoothed(c)
			}
			aps[c] = trapezoid(pc.recalls[c], precisions)
		}
	case MAPVOC2007, MAPVOC2012:
		recallPoints := voc2007Recalls
		if mode == MAPVOC2012 {
			recallPoints = voc2012Recalls
		}
		for c := 0; c < classNum; c++ {
			sum := 0.0
			for _, r := range recallPoints {
				p, _ := pc.Query(r, c)
				sum += p
			}
			aps[c] = sum / float64(len(recallPoints))
		}
	default:
		return nil, errors.Errorf("unknown mAP mode %q", mode)
	}

	mean := 0.0
	for _, ap := range aps {
		mean += ap
	}
	mean /= float64(classNum)

	return &APTable{
		ClassNames: pc.classNames,
		AP:         aps,
		MAP:        mean,
	}, nil
}

// trapezoid integrates precision over recall: each consecutive pair of
// points contributes Δrecall times the average of its two precisions.
func trapezoid(recalls, precisions []float64) float64 {
	area := 0.0
	for i := 0; i+1 < len(precisions); i++ {
		delta := recalls[i+1] - recalls[i]
		area += delta * (precisions[i] + precisions[i+1]) / 2
	}
	return area
}

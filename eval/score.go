package eval

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ScoreTable holds micro-averaged per-class detection scores. A class
// with an empty denominator carries NaN — that is a valid "no data"
// result, not a fault.
type ScoreTable struct {
	ClassNames []string
	Precision  []float64
	Recall     []float64
	F1         []float64
	// GTs counts ground-truth objects per class.
	GTs []int
	// Dets counts surviving detections per class.
	Dets []int
}

// BuildScoreTable sweeps the dataset once and builds the per-class
// score table. yTrues holds one ground-truth grid per image; each
// element of yPreds is one prediction source of the same length, and
// sources are decoded jointly per image.
//
// Counts are accumulated across all images and divided once at the
// end, so precision and recall are micro-averaged over the dataset.
//
// Returns:
//   - The score table, or an error when inputs are misshaped.
func BuildScoreTable(cfg Config, yTrues []*tensor.Dense, yPreds ...[]*tensor.Dense) (*ScoreTable, error) {
	classNum := len(cfg.ClassNames)
	if len(yPreds) == 0 {
		return nil, errors.New("at least one prediction source is required")
	}
	for j, preds := range yPreds {
		if len(preds) != len(yTrues) {
			return nil, errors.Errorf(
				"prediction source %d has %d images, ground truth has %d",
				j, len(preds), len(yTrues))
		}
	}

	// precNum/precDenom and recNum/recDenom per class; divided once at
	// the end.
	precNum := make([]int, classNum)
	precDenom := make([]int, classNum)
	recNum := make([]int, classNum)
	recDenom := make([]int, classNum)
	detCounts := make([]int, classNum)

	imgPreds := make([]*tensor.Dense, len(yPreds))
	for i := range yTrues {
		for j := range yPreds {
			imgPreds[j] = yPreds[j][i]
		}
		truths, preds, err := decodeImage(cfg, yTrues[i], imgPreds)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}

		truthParts := splitByClass(truths, classNum)
		predParts := splitByClass(preds, classNum)

		for c := 0; c < classNum; c++ {
			numPP := len(predParts[c])
			numP := len(truthParts[c])
			precDenom[c] += numPP
			recDenom[c] += numP
			detCounts[c] += numPP

			numTPP, numTP := matchClass(truthParts[c], predParts[c], cfg.IoUThreshold)
			if cfg.PrecisionMode == PrecisionStrict {
				precDenom[c] -= numTPP - numTP
				numTPP = numTP
			}
			precNum[c] += numTPP
			recNum[c] += numTP
		}
	}

	table := &ScoreTable{
		ClassNames: cfg.ClassNames,
		Precision:  make([]float64, classNum),
		Recall:     make([]float64, classNum),
		F1:         make([]float64, classNum),
		GTs:        recDenom,
		Dets:       detCounts,
	}
	for c := 0; c < classNum; c++ {
		// 0/0 deliberately yields NaN.
		p := float64(precNum[c]) / float64(precDenom[c])
		r := float64(recNum[c]) / float64(recDenom[c])
		table.Precision[c] = p
		table.Recall[c] = r
		table.F1[c] = 2 * p * r / (p + r)
	}
	return table, nil
}

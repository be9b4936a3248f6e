// Package accuracy - training-time accuracy metrics over raw grid
// tensors. These compare a prediction grid against its ground-truth
// grid cell by cell, without any box matching or ranking.
package accuracy

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/Darkpoppy/tf2-YOLO/boxes"
)

// confidentThreshold marks a predicted slot as carrying an object.
const confidentThreshold = 0.5

// grid gives indexed access to one image's truth and prediction grids.
// Truth is (H, W, 5+C) with one slot per cell; prediction is
// (H, W, B*(5+C)).
type grid struct {
	truth, pred   []float32
	gridH, gridW  int
	bboxNum       int
	classNum      int
	truthDepth    int
	predSlotLen   int
	predCellDepth int
}

func newGrid(yTrue, yPred *tensor.Dense, bboxNum, classNum int) (*grid, error) {
	ts, ps := yTrue.Shape(), yPred.Shape()
	if len(ts) != 3 || len(ps) != 3 {
		return nil, errors.Errorf("expected rank-3 grids, got %v and %v", ts, ps)
	}
	if ts[0] != ps[0] || ts[1] != ps[1] {
		return nil, errors.Errorf("grid resolutions differ: %v vs %v", ts, ps)
	}
	slotLen := 5 + classNum
	if ts[2] != slotLen {
		return nil, errors.Errorf("truth depth %d does not fit 5+%d", ts[2], classNum)
	}
	if ps[2] != bboxNum*slotLen {
		return nil, errors.Errorf("prediction depth %d does not fit %d*(5+%d)", ps[2], bboxNum, classNum)
	}
	truth, ok := yTrue.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("expected a float32 truth grid, got %v", yTrue.Dtype())
	}
	pred, ok := yPred.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("expected a float32 prediction grid, got %v", yPred.Dtype())
	}
	return &grid{
		truth:         truth,
		pred:          pred,
		gridH:         ts[0],
		gridW:         ts[1],
		bboxNum:       bboxNum,
		classNum:      classNum,
		truthDepth:    slotLen,
		predSlotLen:   slotLen,
		predCellDepth: bboxNum * slotLen,
	}, nil
}

func (g *grid) truthCell(cy, cx int) []float32 {
	return g.truth[(cy*g.gridW+cx)*g.truthDepth : (cy*g.gridW+cx+1)*g.truthDepth]
}

func (g *grid) predSlot(cy, cx, b int) []float32 {
	base := (cy*g.gridW+cx)*g.predCellDepth + b*g.predSlotLen
	return g.pred[base : base+g.predSlotLen]
}

// cellBox converts a grid-encoded slot into a normalized box.
func (g *grid) cellBox(slot []float32, cy, cx int) boxes.Box {
	return boxes.Box{
		X:    (slot[0] + float32(cx)) / float32(g.gridW),
		Y:    (slot[1] + float32(cy)) / float32(g.gridH),
		W:    slot[2],
		H:    slot[3],
		Conf: slot[4],
	}
}

func argmax(probs []float32) int {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best
}

// Objectness measures binary accuracy of objectness: per cell, the max
// slot confidence of the prediction is rounded and compared against the
// truth cell's objectness.
func Objectness(yTrue, yPred *tensor.Dense, bboxNum, classNum int) (float64, error) {
	g, err := newGrid(yTrue, yPred, bboxNum, classNum)
	if err != nil {
		return 0, err
	}

	hits, cells := 0, 0
	for cy := 0; cy < g.gridH; cy++ {
		for cx := 0; cx < g.gridW; cx++ {
			var maxConf float32
			for b := 0; b < g.bboxNum; b++ {
				if c := g.predSlot(cy, cx, b)[4]; c > maxConf {
					maxConf = c
				}
			}
			predHas := maxConf >= confidentThreshold
			trueHas := g.truthCell(cy, cx)[4] >= confidentThreshold
			if predHas == trueHas {
				hits++
			}
			cells++
		}
	}
	return float64(hits) / float64(cells), nil
}

// IoUScore measures the mean IoU between truth boxes and confident
// predicted slots in cells that hold an object. NaN when no slot
// qualifies.
func IoUScore(yTrue, yPred *tensor.Dense, bboxNum, classNum int) (float64, error) {
	g, err := newGrid(yTrue, yPred, bboxNum, classNum)
	if err != nil {
		return 0, err
	}

	sum, total := 0.0, 0.0
	for cy := 0; cy < g.gridH; cy++ {
		for cx := 0; cx < g.gridW; cx++ {
			truthCell := g.truthCell(cy, cx)
			weight := float64(truthCell[4])
			if weight == 0 {
				continue
			}
			truthBox := g.cellBox(truthCell, cy, cx)
			for b := 0; b < g.bboxNum; b++ {
				slot := g.predSlot(cy, cx, b)
				if slot[4] < confidentThreshold {
					continue
				}
				sum += weight * float64(truthBox.IoU(g.cellBox(slot, cy, cx)))
				total += weight
			}
		}
	}
	return sum / total, nil
}

// ClassScore measures the fraction of confident predicted slots whose
// argmax class matches the truth cell's argmax class. NaN when no slot
// is confident.
func ClassScore(yTrue, yPred *tensor.Dense, bboxNum, classNum int) (float64, error) {
	g, err := newGrid(yTrue, yPred, bboxNum, classNum)
	if err != nil {
		return 0, err
	}

	hits, total := 0.0, 0.0
	for cy := 0; cy < g.gridH; cy++ {
		for cx := 0; cx < g.gridW; cx++ {
			trueClass := argmax(g.truthCell(cy, cx)[5:])
			for b := 0; b < g.bboxNum; b++ {
				slot := g.predSlot(cy, cx, b)
				if slot[4] < confidentThreshold {
					continue
				}
				if argmax(slot[5:]) == trueClass {
					hits++
				}
				total++
			}
		}
	}
	return hits / total, nil
}

package boxes

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Version selects among the supported grid-encoding layouts.
type Version int

const (
	// V1 expects a (H, W, B*5+C) grid: B box slots per cell followed by
	// one class-probability vector shared by every slot in the cell.
	V1 Version = 1
	// V2 expects a (H, W, B*(5+C)) grid: each slot carries its own
	// class-probability vector.
	V2 Version = 2
	// V3 uses the V2 slot layout but accepts multiple grids of differing
	// resolution (detection scales) decoded jointly.
	V3 Version = 3
)

// Decode converts grid-encoded tensors into a flat list of classified
// boxes. Cell-relative centers are shifted by the cell position and
// normalized by the grid resolution, so decoded coordinates land in
// [0,1] regardless of scale. Width and height are taken as stored.
//
// A slot is emitted when its confidence is positive and, if threshold
// is non-negative, not below threshold. Ground-truth grids are decoded
// with a negative threshold so that every labeled cell survives.
//
// Arguments:
//   - classNum: Number of classes encoded in the grid.
//   - version: Grid layout, one of V1, V2, V3.
//   - threshold: Confidence cutoff; negative disables filtering.
//   - grids: One grid tensor, or several for V3.
//
// Returns:
//   - The decoded boxes from all grids, in grid iteration order.
//   - An error if a tensor is not a float32 (H, W, depth) grid or its
//     depth does not fit the layout.
func Decode(classNum int, version Version, threshold float32, grids ...*tensor.Dense) ([]ClassifiedBox, error) {
	if version != V1 && version != V2 && version != V3 {
		return nil, errors.Errorf("unsupported decode version %d", version)
	}
	if version != V3 && len(grids) > 1 {
		return nil, errors.Errorf("version %d decodes a single grid, got %d", version, len(grids))
	}

	var out []ClassifiedBox
	for gi, grid := range grids {
		decoded, err := decodeGrid(grid, classNum, version, threshold)
		if err != nil {
			return nil, errors.Wrapf(err, "grid %d", gi)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

func decodeGrid(grid *tensor.Dense, classNum int, version Version, threshold float32) ([]ClassifiedBox, error) {
	shape := grid.Shape()
	if len(shape) != 3 {
		return nil, errors.Errorf("expected a rank-3 grid, got shape %v", shape)
	}
	data, ok := grid.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("expected a float32 grid, got %v", grid.Dtype())
	}

	gridH, gridW, depth := shape[0], shape[1], shape[2]

	var bboxNum, slotLen int
	if version == V1 {
		if (depth-classNum)%5 != 0 || depth <= classNum {
			return nil, errors.Errorf("depth %d does not fit B*5+%d", depth, classNum)
		}
		bboxNum = (depth - classNum) / 5
		slotLen = 5
	} else {
		if depth%(5+classNum) != 0 {
			return nil, errors.Errorf("depth %d does not fit B*(5+%d)", depth, classNum)
		}
		bboxNum = depth / (5 + classNum)
		slotLen = 5 + classNum
	}

	var out []ClassifiedBox
	for cy := 0; cy < gridH; cy++ {
		for cx := 0; cx < gridW; cx++ {
			cell := data[(cy*gridW+cx)*depth : (cy*gridW+cx+1)*depth]
			for b := 0; b < bboxNum; b++ {
				slot := cell[b*slotLen:]
				conf := slot[4]
				if conf <= 0 || (threshold >= 0 && conf < threshold) {
					continue
				}

				var probs []float32
				if version == V1 {
					probs = cell[depth-classNum:]
				} else {
					probs = slot[5 : 5+classNum]
				}

				box := ClassifiedBox{
					Box: Box{
						X:    (slot[0] + float32(cx)) / float32(gridW),
						Y:    (slot[1] + float32(cy)) / float32(gridH),
						W:    slot[2],
						H:    slot[3],
						Conf: conf,
					},
					Probs: append([]float32(nil), probs...),
				}
				out = append(out, box)
			}
		}
	}
	return out, nil
}

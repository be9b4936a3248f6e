package eval

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/Darkpoppy/tf2-YOLO/boxes"
)

// gridBox places one normalized box of a class into a test grid.
type gridBox struct {
	box boxes.Box
	cls int
}

func gb(x, y, w, h, conf float32, cls int) gridBox {
	return gridBox{box: boxes.Box{X: x, Y: y, W: w, H: h, Conf: conf}, cls: cls}
}

// makeGrid encodes boxes into a V2 grid with one slot per cell. Each
// box must land in its own cell.
func makeGrid(t *testing.T, gridSize, classNum int, items ...gridBox) *tensor.Dense {
	t.Helper()
	depth := 5 + classNum
	data := make([]float32, gridSize*gridSize*depth)

	occupied := make(map[int]bool)
	for _, item := range items {
		cx := int(item.box.X * float32(gridSize))
		cy := int(item.box.Y * float32(gridSize))
		require.True(t, cx >= 0 && cx < gridSize && cy >= 0 && cy < gridSize,
			"box center outside the grid")
		cell := cy*gridSize + cx
		require.False(t, occupied[cell], "two test boxes in cell (%d,%d)", cy, cx)
		occupied[cell] = true

		slot := data[cell*depth:]
		slot[0] = item.box.X*float32(gridSize) - float32(cx)
		slot[1] = item.box.Y*float32(gridSize) - float32(cy)
		slot[2] = item.box.W
		slot[3] = item.box.H
		slot[4] = item.box.Conf
		slot[5+item.cls] = 1
	}

	return tensor.New(
		tensor.WithShape(gridSize, gridSize, depth),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(data),
	)
}

// emptyGrid returns a grid with no boxes.
func emptyGrid(t *testing.T, gridSize, classNum int) *tensor.Dense {
	t.Helper()
	return makeGrid(t, gridSize, classNum)
}

// cfgV2 returns a config decoding the test grids, with a single class
// list and no NMS.
func cfgV2(classNames ...string) Config {
	cfg := DefaultConfig(classNames)
	cfg.DecodeVersion = boxes.V2
	return cfg
}

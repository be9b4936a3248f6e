package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darkpoppy/tf2-YOLO/boxes"
)

func det(x, y, w, h, conf float32) boxes.ClassifiedBox {
	return boxes.ClassifiedBox{
		Box:   boxes.Box{X: x, Y: y, W: w, H: h, Conf: conf},
		Probs: []float32{1},
	}
}

func TestNMS(t *testing.T) {
	dets := []boxes.ClassifiedBox{
		det(10, 10, 4, 4, 0.6), // duplicate of the anchor, lower confidence
		det(10, 10, 4, 4, 0.9),
		det(20, 20, 4, 4, 0.8), // disjoint, survives
	}

	kept := NMS(dets, 0.5)
	require.Len(t, kept, 2)
	assert.Equal(t, float32(0.9), kept[0].Conf, "highest confidence kept first")
	assert.Equal(t, float32(0.8), kept[1].Conf)
}

func TestNMSEmpty(t *testing.T) {
	assert.Nil(t, NMS(nil, 0.5))
}

func TestNMSKeepsBelowThreshold(t *testing.T) {
	// IoU between these two is 8/24 = 0.33, below the 0.5 threshold.
	dets := []boxes.ClassifiedBox{
		det(10, 10, 4, 4, 0.9),
		det(12, 10, 4, 4, 0.8),
	}
	assert.Len(t, NMS(dets, 0.5), 2)
}

func TestSoftNMS(t *testing.T) {
	dets := []boxes.ClassifiedBox{
		det(10, 10, 4, 4, 0.9),
		det(10, 10, 4, 4, 0.85), // fully overlapping: decayed to 0.85*e^-2
		det(20, 20, 4, 4, 0.8),  // disjoint: untouched
	}

	kept := SoftNMS(dets, 0.5, 0.3, 0.5)
	require.Len(t, kept, 2, "decayed duplicate should fall under the confidence cutoff")
	assert.Equal(t, float32(0.9), kept[0].Conf)
	assert.Equal(t, float32(0.8), kept[1].Conf)

	// Input is not mutated.
	assert.Equal(t, float32(0.85), dets[1].Conf)
}

func TestSoftNMSKeepsDecayed(t *testing.T) {
	dets := []boxes.ClassifiedBox{
		det(10, 10, 4, 4, 0.9),
		det(10, 10, 4, 4, 0.85),
	}

	// A permissive cutoff keeps the decayed duplicate.
	kept := SoftNMS(dets, 0.5, 0.05, 0.5)
	require.Len(t, kept, 2)
	assert.Less(t, kept[1].Conf, float32(0.85), "duplicate confidence should decay")
	assert.Greater(t, kept[1].Conf, float32(0.05))
}

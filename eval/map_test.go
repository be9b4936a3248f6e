package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantCurve() *PRCurve {
	// A flat curve at precision 1 from recall 0 to 1.
	return &PRCurve{
		classNames: []string{"c"},
		precisions: [][]float64{{1, 1}},
		recalls:    [][]float64{{0, 1}},
	}
}

func TestMAPAreaConstantCurve(t *testing.T) {
	table, err := constantCurve().MAP(MAPArea)
	require.NoError(t, err)
	assert.Equal(t, 1.0, table.AP[0], "trapezoid of a constant-height curve is exact")
	assert.Equal(t, 1.0, table.MAP)
}

func TestMAPModesOnDataset(t *testing.T) {
	yTrues, yPreds := twoImageDataset(t)
	curve, err := NewPRCurve(cfgV2("car"), yTrues, yPreds)
	require.NoError(t, err)

	for _, mode := range []MAPMode{MAPVOC2007, MAPVOC2012, MAPArea, MAPSmoothArea} {
		table, err := curve.MAP(mode)
		require.NoError(t, err, "mode %s", mode)
		require.Len(t, table.AP, 1)
		assert.GreaterOrEqual(t, table.AP[0], 0.0, "mode %s", mode)
		assert.LessOrEqual(t, table.AP[0], 1.0, "mode %s", mode)
		assert.InDelta(t, table.AP[0], table.MAP, 1e-9, "single class: mAP equals its AP")
	}

	// The dataset ranks as TP(0.9), TP(0.8), FP(0.7): envelope
	// precision is 1 up to recall 1, so voc2007 averages ten 1s and one
	// 0 (nothing lies beyond recall 1).
	voc07, err := curve.MAP(MAPVOC2007)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/11.0, voc07.AP[0], 1e-9)

	// Raw trapezoid: only the first step (recall 0.5 -> 1 at precision
	// 1) contributes; the rest is vertical.
	area, err := curve.MAP(MAPArea)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, area.AP[0], 1e-9)
}

func TestMAPSmoothAreaDominatesArea(t *testing.T) {
	yTrues, yPreds := twoImageDataset(t)
	curve, err := NewPRCurve(cfgV2("car"), yTrues, yPreds)
	require.NoError(t, err)

	area, err := curve.MAP(MAPArea)
	require.NoError(t, err)
	smooth, err := curve.MAP(MAPSmoothArea)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, smooth.AP[0], area.AP[0],
		"interpolation only raises precision")
}

func TestMAPUnknownMode(t *testing.T) {
	_, err := constantCurve().MAP("voc1999")
	assert.Error(t, err)
}

func TestAPTableString(t *testing.T) {
	table, err := constantCurve().MAP(MAPArea)
	require.NoError(t, err)
	out := table.String()
	assert.Contains(t, out, "c")
	assert.Contains(t, out, "mAP")
	assert.Contains(t, out, "1.0000")
}

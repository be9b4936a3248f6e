package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestBuildScoreTablePerfectMatch(t *testing.T) {
	cfg := cfgV2("car")
	yTrues := []*tensor.Dense{makeGrid(t, 2, 1, gb(0.5, 0.5, 0.25, 0.25, 1, 0))}
	yPreds := []*tensor.Dense{makeGrid(t, 2, 1, gb(0.5, 0.5, 0.25, 0.25, 0.9, 0))}

	table, err := BuildScoreTable(cfg, yTrues, yPreds)
	require.NoError(t, err)

	assert.Equal(t, 1.0, table.Precision[0])
	assert.Equal(t, 1.0, table.Recall[0])
	assert.Equal(t, 1.0, table.F1[0])
	assert.Equal(t, 1, table.GTs[0])
	assert.Equal(t, 1, table.Dets[0])
}

func TestBuildScoreTableNoDetections(t *testing.T) {
	cfg := cfgV2("car")
	yTrues := []*tensor.Dense{makeGrid(t, 2, 1, gb(0.5, 0.5, 0.25, 0.25, 1, 0))}
	yPreds := []*tensor.Dense{emptyGrid(t, 2, 1)}

	table, err := BuildScoreTable(cfg, yTrues, yPreds)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(table.Precision[0]), "0/0 precision is NaN, not an error")
	assert.Equal(t, 0.0, table.Recall[0])
	assert.True(t, math.IsNaN(table.F1[0]))
	assert.Equal(t, 1, table.GTs[0])
	assert.Equal(t, 0, table.Dets[0])
}

func TestBuildScoreTablePrecisionModes(t *testing.T) {
	// One ground truth, two predictions claiming it and one miss:
	// PP=3, TPP=2, TP=1.
	yTrues := []*tensor.Dense{makeGrid(t, 2, 1, gb(0.5, 0.5, 0.4, 0.4, 1, 0))}
	yPreds := []*tensor.Dense{makeGrid(t, 2, 1,
		gb(0.5, 0.5, 0.4, 0.4, 0.9, 0),
		gb(0.45, 0.5, 0.4, 0.4, 0.8, 0),
		gb(0.5, 0.05, 0.1, 0.1, 0.7, 0),
	)}

	cfg := cfgV2("obj")
	cfg.PrecisionMode = PrecisionTPP
	loose, err := BuildScoreTable(cfg, yTrues, yPreds)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, loose.Precision[0], 1e-9)
	assert.Equal(t, 1.0, loose.Recall[0])

	cfg.PrecisionMode = PrecisionStrict
	strict, err := BuildScoreTable(cfg, yTrues, yPreds)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, strict.Precision[0], 1e-9)
	assert.Equal(t, 1.0, strict.Recall[0])

	assert.LessOrEqual(t, strict.Precision[0], loose.Precision[0],
		"strict accounting never exceeds the loose one")
}

func TestBuildScoreTableMultipleSources(t *testing.T) {
	// Two prediction sources decoded jointly (V3): each source finds
	// one of the two ground truths.
	cfg := DefaultConfig([]string{"car", "person"})

	yTrues := []*tensor.Dense{makeGrid(t, 2, 2,
		gb(0.25, 0.25, 0.2, 0.2, 1, 0),
		gb(0.75, 0.75, 0.2, 0.2, 1, 1),
	)}
	sourceA := []*tensor.Dense{makeGrid(t, 2, 2, gb(0.25, 0.25, 0.2, 0.2, 0.9, 0))}
	sourceB := []*tensor.Dense{makeGrid(t, 2, 2, gb(0.75, 0.75, 0.2, 0.2, 0.8, 1))}

	table, err := BuildScoreTable(cfg, yTrues, sourceA, sourceB)
	require.NoError(t, err)
	for c := 0; c < 2; c++ {
		assert.Equal(t, 1.0, table.Precision[c], "class %d", c)
		assert.Equal(t, 1.0, table.Recall[c], "class %d", c)
	}
}

func TestBuildScoreTableInputErrors(t *testing.T) {
	cfg := cfgV2("car")
	yTrues := []*tensor.Dense{emptyGrid(t, 2, 1)}

	_, err := BuildScoreTable(cfg, yTrues)
	assert.Error(t, err, "no prediction sources")

	_, err = BuildScoreTable(cfg, yTrues, []*tensor.Dense{})
	assert.Error(t, err, "length mismatch")
}

func TestScoreTableString(t *testing.T) {
	cfg := cfgV2("car")
	yTrues := []*tensor.Dense{makeGrid(t, 2, 1, gb(0.5, 0.5, 0.25, 0.25, 1, 0))}
	yPreds := []*tensor.Dense{makeGrid(t, 2, 1, gb(0.5, 0.5, 0.25, 0.25, 0.9, 0))}

	table, err := BuildScoreTable(cfg, yTrues, yPreds)
	require.NoError(t, err)

	out := table.String()
	assert.Contains(t, out, "car")
	assert.Contains(t, out, "precision")
	assert.Contains(t, out, "1.0000")
}

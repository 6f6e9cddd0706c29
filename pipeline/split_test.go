package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

func splitTable(t *testing.T, n int) *dataset.Table {
	t.Helper()
	engine := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		engine[i] = float64(i/10 + 1)
		x[i] = float64(i)
		y[i] = float64(2 * i)
	}
	tab, err := dataset.FromColumns(
		[]string{dataset.ColEngineID, "x", "target"},
		[][]float64{engine, x, y},
	)
	require.NoError(t, err)
	return tab
}

func TestTrainTestSplitRatio(t *testing.T) {
	for _, ratio := range []float64{0.5, 0.7, 0.8, 0.9} {
		tab := splitTable(t, 100)
		split, err := TrainTestSplit(tab, "target", ratio, WithSeed(1))
		require.NoError(t, err)

		n := float64(tab.NumRows())
		got := float64(split.XTrain.NumRows()) / n
		assert.LessOrEqual(t, math.Abs(got-ratio), 1.0/n+1e-12, "ratio %g", ratio)
		assert.Equal(t, tab.NumRows(), split.XTrain.NumRows()+split.XTest.NumRows())
		assert.Len(t, split.YTrain, split.XTrain.NumRows())
		assert.Len(t, split.YTest, split.XTest.NumRows())
	}
}

func TestTrainTestSplitRemovesTarget(t *testing.T) {
	tab := splitTable(t, 20)
	split, err := TrainTestSplit(tab, "target", 0.8)
	require.NoError(t, err)

	assert.False(t, split.XTrain.HasColumn("target"))
	assert.False(t, split.XTest.HasColumn("target"))
	assert.True(t, split.XTrain.HasColumn("x"))
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	tab := splitTable(t, 50)

	a, err := TrainTestSplit(tab, "target", 0.8, WithSeed(9))
	require.NoError(t, err)
	b, err := TrainTestSplit(tab, "target", 0.8, WithSeed(9))
	require.NoError(t, err)
	c, err := TrainTestSplit(tab, "target", 0.8, WithSeed(10))
	require.NoError(t, err)

	assert.True(t, a.XTrain.Equal(b.XTrain))
	assert.Equal(t, a.YTest, b.YTest)
	assert.False(t, a.XTrain.Equal(c.XTrain))
}

func TestTrainTestSplitRowsStayPaired(t *testing.T) {
	tab := splitTable(t, 40)
	split, err := TrainTestSplit(tab, "target", 0.75, WithSeed(4))
	require.NoError(t, err)

	// target was built as 2*x, so the pairing survives the shuffle.
	xs, err := split.XTrain.Column("x")
	require.NoError(t, err)
	for i, x := range xs {
		assert.Equal(t, 2*x, split.YTrain[i])
	}
	xs, err = split.XTest.Column("x")
	require.NoError(t, err)
	for i, x := range xs {
		assert.Equal(t, 2*x, split.YTest[i])
	}
}

func TestTrainTestSplitGrouped(t *testing.T) {
	tab := splitTable(t, 100) // 10 engines, 10 cycles each
	split, err := TrainTestSplit(tab, "target", 0.8,
		WithSeed(2), WithGroupColumn(dataset.ColEngineID))
	require.NoError(t, err)

	trainEngines, err := split.XTrain.Column(dataset.ColEngineID)
	require.NoError(t, err)
	testEngines, err := split.XTest.Column(dataset.ColEngineID)
	require.NoError(t, err)

	seen := make(map[float64]bool)
	for _, e := range trainEngines {
		seen[e] = true
	}
	for _, e := range testEngines {
		assert.False(t, seen[e], "engine %g appears in both partitions", e)
	}
	// 8 of 10 engines on the training side.
	assert.Equal(t, 80, split.XTrain.NumRows())
	assert.Equal(t, 20, split.XTest.NumRows())
}

func TestTrainTestSplitInvalidRatio(t *testing.T) {
	tab := splitTable(t, 10)
	for _, ratio := range []float64{0, 1, -0.5, 1.5} {
		_, err := TrainTestSplit(tab, "target", ratio)
		var ratioErr *errors.InvalidRatioError
		require.ErrorAs(t, err, &ratioErr, "ratio %g", ratio)
		assert.Equal(t, ratio, ratioErr.Ratio)
	}
}

func TestTrainTestSplitMissingTarget(t *testing.T) {
	tab := splitTable(t, 10)
	_, err := TrainTestSplit(tab, "nope", 0.8)
	var schemaErr *errors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestTrainTestSplitExtremeRatioKeepsBothSides(t *testing.T) {
	tab := splitTable(t, 10)
	split, err := TrainTestSplit(tab, "target", 0.999)
	require.NoError(t, err)
	assert.Equal(t, 9, split.XTrain.NumRows())
	assert.Equal(t, 1, split.XTest.NumRows())
}

func TestSplitIndicesTooFewRows(t *testing.T) {
	_, _, err := splitIndices(1, nil, 0.5, 0, true)
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestSplitIndicesWithoutShuffle(t *testing.T) {
	train, test, err := splitIndices(10, nil, 0.7, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, train)
	assert.Equal(t, []int{7, 8, 9}, test)
}

func TestSplitGroupedNeedsTwoGroups(t *testing.T) {
	groups := []float64{1, 1, 1, 1}
	_, _, err := splitIndices(4, groups, 0.5, 0, true)
	var valueErr *errors.ValueError
	assert.ErrorAs(t, err, &valueErr)
}

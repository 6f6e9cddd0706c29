package analysis

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/rulpipe/dataset"
)

func labeledTable(t *testing.T) *dataset.Table {
	t.Helper()
	tab, err := dataset.FromColumns(
		[]string{dataset.ColEngineID, dataset.ColCycle, "s1"},
		[][]float64{
			{1, 1, 1, 2, 2, 2},
			{1, 2, 3, 1, 2, 3},
			{10, 20, 30, 15, 25, 35},
		},
	)
	require.NoError(t, err)
	labeled, err := dataset.AddRUL(tab)
	require.NoError(t, err)
	return labeled
}

func TestDescribe(t *testing.T) {
	nan := math.NaN()
	tab, err := dataset.FromColumns(
		[]string{"a", "b"},
		[][]float64{
			{1, 2, 3, 4},
			{5, nan, 7, nan},
		},
	)
	require.NoError(t, err)

	summaries, err := Describe(tab)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	a := summaries["a"]
	assert.Equal(t, 4, a.Count)
	assert.Equal(t, 0, a.Missing)
	assert.InDelta(t, 2.5, a.Mean, 1e-12)
	assert.Equal(t, 1.0, a.Min)
	assert.Equal(t, 4.0, a.Max)
	assert.InDelta(t, 2.0, a.Median, 1e-12)

	b := summaries["b"]
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, 2, b.Missing)
	assert.InDelta(t, 6.0, b.Mean, 1e-12)
}

func TestDescribeAllMissingColumn(t *testing.T) {
	nan := math.NaN()
	tab, err := dataset.FromColumns([]string{"x"}, [][]float64{{nan, nan}})
	require.NoError(t, err)

	summaries, err := Describe(tab)
	require.NoError(t, err)
	s := summaries["x"]
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 2, s.Missing)
	assert.True(t, math.IsNaN(s.Mean))
}

func TestEngineTrajectory(t *testing.T) {
	tab := labeledTable(t)

	cycles, values, err := EngineTrajectory(tab, 2, "s1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, cycles)
	assert.Equal(t, []float64{15, 25, 35}, values)

	_, _, err = EngineTrajectory(tab, 99, "s1")
	assert.Error(t, err)
}

func TestSaveRULHistogram(t *testing.T) {
	tab := labeledTable(t)
	out := filepath.Join(t.TempDir(), "rul.png")

	require.NoError(t, SaveRULHistogram(tab, 5, out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveSensorTrajectory(t *testing.T) {
	tab := labeledTable(t)
	out := filepath.Join(t.TempDir(), "s1.png")

	require.NoError(t, SaveSensorTrajectory(tab, 1, "s1", out))
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestSavePredictionScatter(t *testing.T) {
	out := filepath.Join(t.TempDir(), "pred.png")
	yTrue := []float64{10, 20, 30, 40}
	yPred := []float64{12, 19, 33, 38}

	require.NoError(t, SavePredictionScatter(yTrue, yPred, out))
	_, err := os.Stat(out)
	assert.NoError(t, err)

	assert.Error(t, SavePredictionScatter(yTrue, yPred[:2], out))
	assert.Error(t, SavePredictionScatter(nil, nil, out))
}

package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

func trainingTable(t *testing.T) (*dataset.Table, []float64) {
	t.Helper()
	var f1, f2, y []float64
	for i := 0; i < 60; i++ {
		a := float64(i % 10)
		b := float64(i % 7)
		f1 = append(f1, a)
		f2 = append(f2, b)
		y = append(y, 3*a-2*b+5)
	}
	tab, err := dataset.FromColumns([]string{"f1", "f2"}, [][]float64{f1, f2})
	require.NoError(t, err)
	return tab, y
}

func TestTrainLinReg(t *testing.T) {
	X, y := trainingTable(t)

	model, err := Train(AlgorithmLinReg, X, y)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmLinReg, model.Algorithm)
	assert.Equal(t, []string{"f1", "f2"}, model.Features)
	assert.Equal(t, map[string]interface{}{"fit_intercept": true}, model.Params)

	preds, err := model.Predict(X)
	require.NoError(t, err)
	require.Len(t, preds, X.NumRows())
	for i, want := range y {
		assert.InDelta(t, want, preds[i], 1e-8)
	}
}

func TestTrainHGB(t *testing.T) {
	X, y := trainingTable(t)

	model, err := Train(AlgorithmHGB, X, y)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmHGB, model.Algorithm)
	assert.Contains(t, model.Params, "learning_rate")

	preds, err := model.Predict(X)
	require.NoError(t, err)
	require.Len(t, preds, X.NumRows())
}

func TestTrainUnknownAlgorithm(t *testing.T) {
	X, y := trainingTable(t)

	_, err := Train("random_forest", X, y)
	var unknownErr *errors.UnknownAlgorithmError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "random_forest", unknownErr.Name)
	assert.Equal(t, KnownAlgorithms(), unknownErr.Known)
}

func TestTrainTargetLengthMismatch(t *testing.T) {
	X, y := trainingTable(t)

	_, err := Train(AlgorithmLinReg, X, y[:10])
	var dimErr *errors.DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestPredictSchemaMismatch(t *testing.T) {
	X, y := trainingTable(t)
	model, err := Train(AlgorithmLinReg, X, y)
	require.NoError(t, err)

	var mismatch *errors.SchemaMismatchError

	// Wrong column set.
	other, err := dataset.FromColumns([]string{"f1", "f3"}, [][]float64{{1}, {2}})
	require.NoError(t, err)
	_, errPredict := model.Predict(other)
	assert.ErrorAs(t, errPredict, &mismatch)

	// Wrong column count.
	narrow, err := dataset.FromColumns([]string{"f1"}, [][]float64{{1}})
	require.NoError(t, err)
	_, errPredict = model.Predict(narrow)
	assert.ErrorAs(t, errPredict, &mismatch)
}

func TestPredictReordersMatchingColumns(t *testing.T) {
	X, y := trainingTable(t)
	model, err := Train(AlgorithmLinReg, X, y)
	require.NoError(t, err)

	reordered, err := X.Select([]string{"f2", "f1"})
	require.NoError(t, err)

	straight, err := model.Predict(X)
	require.NoError(t, err)
	swapped, err := model.Predict(reordered)
	require.NoError(t, err)

	for i := range straight {
		assert.InDelta(t, straight[i], swapped[i], 1e-12)
	}
}

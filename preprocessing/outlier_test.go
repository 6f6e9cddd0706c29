package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

func TestNewOutlierDetector(t *testing.T) {
	z, err := NewOutlierDetector(OutlierZScore)
	require.NoError(t, err)
	assert.IsType(t, &ZScoreDetector{}, z)

	iqr, err := NewOutlierDetector(OutlierIQR)
	require.NoError(t, err)
	assert.IsType(t, &IQRDetector{}, iqr)

	_, err = NewOutlierDetector("mad")
	var stratErr *errors.UnsupportedStrategyError
	require.ErrorAs(t, err, &stratErr)
	assert.Equal(t, "outlier detection", stratErr.Kind)
}

func TestZScoreDetectorFilter(t *testing.T) {
	// 20 values near 10 plus one extreme outlier.
	col := make([]float64, 0, 21)
	for i := 0; i < 10; i++ {
		col = append(col, 9, 11)
	}
	col = append(col, 1000)
	tab := tableOf(t, []string{"x"}, [][]float64{col})

	d, err := NewOutlierDetector(OutlierZScore)
	require.NoError(t, err)
	require.NoError(t, d.Fit(tab, "x"))

	filtered, removed, err := d.Filter(tab)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 20, filtered.NumRows())

	got, _ := filtered.Column("x")
	for _, v := range got {
		assert.NotEqual(t, 1000.0, v)
	}
}

func TestIQRDetectorFilter(t *testing.T) {
	tab := tableOf(t, []string{"x"}, [][]float64{{1, 2, 3, 4, 5, 6, 7, 8, 500}})

	d, err := NewOutlierDetector(OutlierIQR)
	require.NoError(t, err)
	require.NoError(t, d.Fit(tab, "x"))

	lower, upper := d.Bounds()
	assert.Less(t, lower, 1.0)
	assert.Less(t, upper, 500.0)

	filtered, removed, err := d.Filter(tab)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 8, filtered.NumRows())
}

func TestOutlierBoundsFromTrainingOnly(t *testing.T) {
	train := tableOf(t, []string{"x"}, [][]float64{{1, 2, 3, 4, 5, 6, 7, 8}})
	test := tableOf(t, []string{"x"}, [][]float64{{4, 5, 300}})

	d, err := NewOutlierDetector(OutlierIQR)
	require.NoError(t, err)
	require.NoError(t, d.Fit(train, "x"))

	// Bounds fitted on train apply unchanged to any table.
	filtered, removed, err := d.Filter(test)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, filtered.NumRows())
}

func TestOutlierDetectorErrors(t *testing.T) {
	tab := tableOf(t, []string{"x"}, [][]float64{{1, 2}})

	d, err := NewOutlierDetector(OutlierZScore)
	require.NoError(t, err)

	var notFitted *errors.NotFittedError
	_, _, errFilter := d.Filter(tab)
	assert.ErrorAs(t, errFilter, &notFitted)

	var schemaErr *errors.SchemaError
	assert.ErrorAs(t, d.Fit(tab, "missing"), &schemaErr)
}

func TestOutlierFilterKeepsRowAlignment(t *testing.T) {
	tab := tableOf(t, []string{"x", "y"}, [][]float64{
		{1, 2, 3, 4, 5, 6, 7, 1000},
		{10, 20, 30, 40, 50, 60, 70, 80},
	})

	d, err := NewOutlierDetector(OutlierIQR)
	require.NoError(t, err)
	require.NoError(t, d.Fit(tab, "x"))

	filtered, removed, err := d.Filter(tab)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	y, _ := filtered.Column("y")
	assert.Equal(t, []float64{10, 20, 30, 40, 50, 60, 70}, y)
}

package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

func TestNewTransformer(t *testing.T) {
	tests := []struct {
		strategy string
		want     interface{}
	}{
		{StrategyStandardScaling, &StandardScaler{}},
		{StrategyMinMaxScaling, &MinMaxScaler{}},
		{StrategyLog, &LogTransformer{}},
		{StrategyOneHotEncoding, &OneHotEncoder{}},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			tr, err := NewTransformer(tt.strategy, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, tr)
		})
	}
}

func TestNewTransformerUnsupported(t *testing.T) {
	_, err := NewTransformer("robust_scaling", nil)
	var stratErr *errors.UnsupportedStrategyError
	require.ErrorAs(t, err, &stratErr)
	assert.Equal(t, "robust_scaling", stratErr.Name)
	assert.Equal(t, SupportedStrategies(), stratErr.Supported)
}

func TestLogTransformer(t *testing.T) {
	tab := tableOf(t, []string{"x"}, [][]float64{{0, 1, math.E - 1}})

	l := NewLogTransformer(nil)
	out, err := l.FitTransform(tab)
	require.NoError(t, err)

	got, _ := out.Column("x")
	assert.InDeltaSlice(t, []float64{0, math.Log(2), 1}, got, 1e-12)
}

func TestLogTransformerNegativeValue(t *testing.T) {
	tab := tableOf(t, []string{"x", "y"}, [][]float64{{1, 2}, {3, -0.5}})

	l := NewLogTransformer(nil)
	err := l.Fit(tab)
	var domainErr *errors.InvalidDomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "y", domainErr.Column)
	assert.Equal(t, -0.5, domainErr.Value)
}

func TestLogTransformerNoPartialOutput(t *testing.T) {
	train := tableOf(t, []string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	l := NewLogTransformer(nil)
	require.NoError(t, l.Fit(train))

	// Second column is invalid: the transform fails without producing a
	// table where only the first column was transformed.
	bad := tableOf(t, []string{"a", "b"}, [][]float64{{1, 2}, {3, -1}})
	out, err := l.Transform(bad)
	assert.Error(t, err)
	assert.Nil(t, out)
	a, _ := bad.Column("a")
	assert.Equal(t, []float64{1, 2}, a)
}

func TestOneHotEncoder(t *testing.T) {
	tab := tableOf(t, []string{"mode", "s1"}, [][]float64{{2, 1, 2, 3}, {10, 20, 30, 40}})

	o := NewOneHotEncoder([]string{"mode"})
	out, err := o.FitTransform(tab)
	require.NoError(t, err)

	// Indicator columns replace the encoded column in place, sorted by
	// category value; other columns are untouched.
	assert.Equal(t, []string{"mode=1", "mode=2", "mode=3", "s1"}, out.Columns())
	m1, _ := out.Column("mode=1")
	m2, _ := out.Column("mode=2")
	m3, _ := out.Column("mode=3")
	assert.Equal(t, []float64{0, 1, 0, 0}, m1)
	assert.Equal(t, []float64{1, 0, 1, 0}, m2)
	assert.Equal(t, []float64{0, 0, 0, 1}, m3)
}

func TestOneHotEncoderStableSchemaAcrossTables(t *testing.T) {
	train := tableOf(t, []string{"mode"}, [][]float64{{1, 2, 3}})
	test := tableOf(t, []string{"mode"}, [][]float64{{3, 3, 4}})

	o := NewOneHotEncoder(nil)
	require.NoError(t, o.Fit(train))

	out, err := o.Transform(test)
	require.NoError(t, err)

	// Fitted categories absent from the table become all-zero columns;
	// unseen category 4 is dropped rather than widening the schema.
	assert.Equal(t, []string{"mode=1", "mode=2", "mode=3"}, out.Columns())
	m1, _ := out.Column("mode=1")
	m3, _ := out.Column("mode=3")
	assert.Equal(t, []float64{0, 0, 0}, m1)
	assert.Equal(t, []float64{1, 1, 0}, m3)
}

func TestOneHotEncoderMissingColumn(t *testing.T) {
	train := tableOf(t, []string{"mode"}, [][]float64{{1, 2}})
	o := NewOneHotEncoder(nil)
	require.NoError(t, o.Fit(train))

	_, err := o.Transform(tableOf(t, []string{"other"}, [][]float64{{1, 2}}))
	var schemaErr *errors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestTransformerFitTransformMatchesFitThenTransform(t *testing.T) {
	for _, strategy := range SupportedStrategies() {
		t.Run(strategy, func(t *testing.T) {
			tab := tableOf(t, []string{"a", "b"}, [][]float64{{1, 2, 3, 4}, {0, 1, 0, 1}})

			one, err := NewTransformer(strategy, nil)
			require.NoError(t, err)
			combined, err := one.FitTransform(tab)
			require.NoError(t, err)

			two, err := NewTransformer(strategy, nil)
			require.NoError(t, err)
			require.NoError(t, two.Fit(tab))
			separate, err := two.Transform(tab)
			require.NoError(t, err)

			assert.True(t, combined.Equal(separate))
		})
	}
}

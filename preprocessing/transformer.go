// Package preprocessing implements the feature engineering stages of the
// training workflow: missing-value imputation, scaling, log transformation,
// one-hot encoding and outlier filtering. Every transformer follows the
// fit/transform convention: Fit learns parameters from a reference (training)
// table, Transform applies them to any table so train and test stay in the
// same feature space.
package preprocessing

import (
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// Transformer is the interface of all feature engineering strategies.
type Transformer interface {
	// Fit learns the transform parameters from a reference table.
	Fit(t *dataset.Table) error

	// Transform applies the fitted parameters and returns a new table.
	// The input table is never modified.
	Transform(t *dataset.Table) (*dataset.Table, error)

	// FitTransform fits on t and transforms it in one call.
	FitTransform(t *dataset.Table) (*dataset.Table, error)
}

// Feature engineering strategy names accepted by NewTransformer.
const (
	StrategyStandardScaling = "standard_scaling"
	StrategyMinMaxScaling   = "minmax_scaling"
	StrategyLog             = "log"
	StrategyOneHotEncoding  = "onehot_encoding"
)

// SupportedStrategies lists the registered feature engineering strategies.
func SupportedStrategies() []string {
	return []string{StrategyStandardScaling, StrategyMinMaxScaling, StrategyLog, StrategyOneHotEncoding}
}

// NewTransformer resolves a feature engineering strategy by name. The
// transformer operates on the given feature columns; an empty list means
// every column. Unknown names fail with an UnsupportedStrategyError before
// any data is touched.
func NewTransformer(strategy string, features []string) (Transformer, error) {
	switch strategy {
	case StrategyStandardScaling:
		return NewStandardScaler(features), nil
	case StrategyMinMaxScaling:
		return NewMinMaxScaler(features), nil
	case StrategyLog:
		return NewLogTransformer(features), nil
	case StrategyOneHotEncoding:
		return NewOneHotEncoder(features), nil
	default:
		return nil, errors.NewUnsupportedStrategyError("feature engineering", strategy,
			SupportedStrategies()...)
	}
}

// featureList resolves the configured feature columns against a table,
// defaulting to all columns. Unknown configured columns are a SchemaError.
func featureList(op string, t *dataset.Table, features []string) ([]string, error) {
	if len(features) == 0 {
		return t.Columns(), nil
	}
	var missing []string
	for _, f := range features {
		if !t.HasColumn(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError(op, missing...)
	}
	return append([]string(nil), features...), nil
}

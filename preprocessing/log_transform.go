package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// LogTransformer applies log1p to the configured feature columns. The
// transform requires non-negative input: any negative value fails with an
// InvalidDomainError and the input table is left untouched. log1p rather
// than plain log is used so zero values stay in the domain.
type LogTransformer struct {
	model.BaseEstimator

	// Features are the columns to transform; empty means all columns.
	Features []string

	fitted []string
}

// NewLogTransformer creates a LogTransformer over the given feature columns.
func NewLogTransformer(features []string) *LogTransformer {
	return &LogTransformer{Features: append([]string(nil), features...)}
}

// Fit resolves the feature list and validates the reference data domain.
func (l *LogTransformer) Fit(t *dataset.Table) error {
	features, err := featureList("LogTransformer.Fit", t, l.Features)
	if err != nil {
		return err
	}
	if err := l.checkDomain("LogTransformer.Fit", t, features); err != nil {
		return err
	}
	l.fitted = features
	l.SetFitted()
	return nil
}

func (l *LogTransformer) checkDomain(op string, t *dataset.Table, features []string) error {
	for _, name := range features {
		col, err := t.Column(name)
		if err != nil {
			return err
		}
		for _, v := range col {
			if v < 0 {
				return errors.NewInvalidDomainError(op, name, v)
			}
		}
	}
	return nil
}

// Transform applies log1p to the fitted columns and returns a new table.
func (l *LogTransformer) Transform(t *dataset.Table) (*dataset.Table, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("LogTransformer", "Transform")
	}
	// Validate the whole table before producing any output so a domain
	// error cannot leave a partially transformed result.
	if err := l.checkDomain("LogTransformer.Transform", t, l.fitted); err != nil {
		return nil, err
	}
	out := t
	for _, name := range l.fitted {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		transformed := make([]float64, len(col))
		for i, v := range col {
			transformed[i] = math.Log1p(v)
		}
		if out, err = out.WithColumn(name, transformed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransform fits on t and transforms the same table.
func (l *LogTransformer) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if err := l.Fit(t); err != nil {
		return nil, err
	}
	return l.Transform(t)
}

package preprocessing

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// OneHotEncoder replaces each configured categorical column with one
// indicator column per category. The category vocabulary is learned by Fit
// and sorted ascending, so the encoded column set and order are identical
// for every table the encoder is applied to. Categories absent from a table
// produce all-zero indicator columns; categories unseen during Fit are
// dropped rather than widening the schema.
type OneHotEncoder struct {
	model.BaseEstimator

	// Features are the columns to encode; empty means all columns.
	Features []string

	// Categories holds the fitted vocabulary per column, sorted ascending.
	Categories map[string][]float64

	fitted []string
}

// NewOneHotEncoder creates a OneHotEncoder over the given feature columns.
func NewOneHotEncoder(features []string) *OneHotEncoder {
	return &OneHotEncoder{Features: append([]string(nil), features...)}
}

// Fit learns the sorted category vocabulary of each feature column.
func (o *OneHotEncoder) Fit(t *dataset.Table) error {
	if t.NumRows() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Fit")
	}
	features, err := featureList("OneHotEncoder.Fit", t, o.Features)
	if err != nil {
		return err
	}
	o.Categories = make(map[string][]float64, len(features))
	for _, name := range features {
		col, err := t.Column(name)
		if err != nil {
			return err
		}
		seen := make(map[float64]bool, len(col))
		for _, v := range col {
			seen[v] = true
		}
		vocab := make([]float64, 0, len(seen))
		for v := range seen {
			vocab = append(vocab, v)
		}
		sort.Float64s(vocab)
		o.Categories[name] = vocab
	}
	o.fitted = features
	o.SetFitted()
	return nil
}

// indicatorName is the deterministic name of an indicator column.
func indicatorName(column string, category float64) string {
	return fmt.Sprintf("%s=%s", column, strconv.FormatFloat(category, 'g', -1, 64))
}

// Transform encodes the fitted columns and returns a new table. Indicator
// columns take the position of the column they replace, preserving overall
// column order.
func (o *OneHotEncoder) Transform(t *dataset.Table) (*dataset.Table, error) {
	if !o.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	encode := make(map[string]bool, len(o.fitted))
	for _, f := range o.fitted {
		if !t.HasColumn(f) {
			return nil, errors.NewSchemaError("OneHotEncoder.Transform", f)
		}
		encode[f] = true
	}

	var cols []string
	var data [][]float64
	for _, name := range t.Columns() {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if !encode[name] {
			cols = append(cols, name)
			data = append(data, append([]float64(nil), col...))
			continue
		}
		for _, category := range o.Categories[name] {
			indicator := make([]float64, len(col))
			for i, v := range col {
				if v == category {
					indicator[i] = 1.0
				}
			}
			cols = append(cols, indicatorName(name, category))
			data = append(data, indicator)
		}
	}
	return dataset.FromColumns(cols, data)
}

// FitTransform fits on t and transforms the same table.
func (o *OneHotEncoder) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if err := o.Fit(t); err != nil {
		return nil, err
	}
	return o.Transform(t)
}

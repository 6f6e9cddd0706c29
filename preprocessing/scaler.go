package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// StandardScaler standardizes the configured feature columns to zero mean
// and unit variance. Statistics are computed by Fit from the reference
// table only, so fitting on the training split and transforming the test
// split cannot leak test information.
type StandardScaler struct {
	model.BaseEstimator

	// Features are the columns to scale; empty means all columns.
	Features []string

	// Mean holds the fitted per-column mean, keyed by column name.
	Mean map[string]float64

	// Scale holds the fitted per-column standard deviation.
	Scale map[string]float64

	// WithMean controls whether the mean is subtracted (default: true).
	WithMean bool

	// WithStd controls whether values are divided by the standard
	// deviation (default: true).
	WithStd bool

	fitted []string // resolved feature list at fit time
}

// NewStandardScaler creates a StandardScaler over the given feature columns.
func NewStandardScaler(features []string) *StandardScaler {
	return &StandardScaler{
		Features: append([]string(nil), features...),
		WithMean: true,
		WithStd:  true,
	}
}

// Fit computes per-column mean and standard deviation from t.
func (s *StandardScaler) Fit(t *dataset.Table) error {
	if t.NumRows() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}
	features, err := featureList("StandardScaler.Fit", t, s.Features)
	if err != nil {
		return err
	}

	s.Mean = make(map[string]float64, len(features))
	s.Scale = make(map[string]float64, len(features))
	for _, name := range features {
		col, err := t.Column(name)
		if err != nil {
			return err
		}
		mean := 0.0
		if s.WithMean {
			mean = stat.Mean(col, nil)
		}
		scale := 1.0
		if s.WithStd {
			var sumSquares float64
			for _, v := range col {
				diff := v - mean
				sumSquares += diff * diff
			}
			scale = math.Sqrt(sumSquares / float64(len(col)))
			// Constant columns keep scale 1 to avoid division by zero.
			if math.Abs(scale) < 1e-8 {
				scale = 1.0
			}
		}
		s.Mean[name] = mean
		s.Scale[name] = scale
	}
	s.fitted = features
	s.SetFitted()
	return nil
}

// Transform standardizes the fitted columns and returns a new table.
func (s *StandardScaler) Transform(t *dataset.Table) (*dataset.Table, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	out := t
	for _, name := range s.fitted {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		scaled := make([]float64, len(col))
		for i, v := range col {
			scaled[i] = (v - s.Mean[name]) / s.Scale[name]
		}
		if out, err = out.WithColumn(name, scaled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransform fits on t and transforms the same table.
func (s *StandardScaler) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if err := s.Fit(t); err != nil {
		return nil, err
	}
	return s.Transform(t)
}

// InverseTransform maps standardized columns back to the original scale.
func (s *StandardScaler) InverseTransform(t *dataset.Table) (*dataset.Table, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	out := t
	for _, name := range s.fitted {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		orig := make([]float64, len(col))
		for i, v := range col {
			orig[i] = v*s.Scale[name] + s.Mean[name]
		}
		if out, err = out.WithColumn(name, orig); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// String returns the string representation of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, len(s.fitted))
}

// MinMaxScaler scales the configured feature columns into a fixed range,
// [0, 1] by default.
type MinMaxScaler struct {
	model.BaseEstimator

	// Features are the columns to scale; empty means all columns.
	Features []string

	// DataMin holds the fitted per-column minimum.
	DataMin map[string]float64

	// DataMax holds the fitted per-column maximum.
	DataMax map[string]float64

	// FeatureRange is the target range [min, max].
	FeatureRange [2]float64

	fitted []string
}

// NewMinMaxScaler creates a MinMaxScaler over the given feature columns
// with the default [0, 1] range.
func NewMinMaxScaler(features []string) *MinMaxScaler {
	return &MinMaxScaler{
		Features:     append([]string(nil), features...),
		FeatureRange: [2]float64{0.0, 1.0},
	}
}

// Fit computes per-column minimum and maximum from t.
func (m *MinMaxScaler) Fit(t *dataset.Table) error {
	if t.NumRows() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "MinMaxScaler.Fit")
	}
	features, err := featureList("MinMaxScaler.Fit", t, m.Features)
	if err != nil {
		return err
	}

	m.DataMin = make(map[string]float64, len(features))
	m.DataMax = make(map[string]float64, len(features))
	for _, name := range features {
		col, err := t.Column(name)
		if err != nil {
			return err
		}
		lo, hi := col[0], col[0]
		for _, v := range col[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		m.DataMin[name] = lo
		m.DataMax[name] = hi
	}
	m.fitted = features
	m.SetFitted()
	return nil
}

func (m *MinMaxScaler) span(name string) float64 {
	span := m.DataMax[name] - m.DataMin[name]
	// Constant columns map to the range minimum.
	if math.Abs(span) < 1e-8 {
		return 1.0
	}
	return span
}

// Transform scales the fitted columns into the feature range.
func (m *MinMaxScaler) Transform(t *dataset.Table) (*dataset.Table, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	width := m.FeatureRange[1] - m.FeatureRange[0]
	out := t
	for _, name := range m.fitted {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		scaled := make([]float64, len(col))
		for i, v := range col {
			scaled[i] = (v-m.DataMin[name])/m.span(name)*width + m.FeatureRange[0]
		}
		if out, err = out.WithColumn(name, scaled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransform fits on t and transforms the same table.
func (m *MinMaxScaler) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if err := m.Fit(t); err != nil {
		return nil, err
	}
	return m.Transform(t)
}

// InverseTransform maps scaled columns back to the original range.
func (m *MinMaxScaler) InverseTransform(t *dataset.Table) (*dataset.Table, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}
	width := m.FeatureRange[1] - m.FeatureRange[0]
	out := t
	for _, name := range m.fitted {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		orig := make([]float64, len(col))
		for i, v := range col {
			orig[i] = (v-m.FeatureRange[0])/width*m.span(name) + m.DataMin[name]
		}
		if out, err = out.WithColumn(name, orig); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// String returns the string representation of the scaler.
func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], len(m.fitted))
}

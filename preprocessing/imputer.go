package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// Imputation strategy names accepted by NewImputer.
const (
	ImputeMean         = "mean"
	ImputeMedian       = "median"
	ImputeMostFrequent = "most_frequent"
	ImputeConstant     = "constant"
)

// SupportedImputeStrategies lists the registered imputation strategies.
func SupportedImputeStrategies() []string {
	return []string{ImputeMean, ImputeMedian, ImputeMostFrequent, ImputeConstant}
}

// Imputer fills NaN gaps in every column using a per-column statistic. The
// statistic is computed by Fit over the reference (training) table only;
// Transform reuses it on any table, so test gaps are filled with training
// statistics. FitTransform is the single-shot utility form that computes
// and applies over the full input.
type Imputer struct {
	model.BaseEstimator

	// Strategy is one of mean, median, most_frequent or constant.
	Strategy string

	// FillValue is the value used by the constant strategy.
	FillValue float64

	// Statistics holds the fitted fill value per column.
	Statistics map[string]float64
}

// NewImputer creates an Imputer for the given strategy. Unknown strategy
// names fail with an UnsupportedStrategyError.
func NewImputer(strategy string) (*Imputer, error) {
	switch strategy {
	case ImputeMean, ImputeMedian, ImputeMostFrequent, ImputeConstant:
		return &Imputer{Strategy: strategy}, nil
	default:
		return nil, errors.NewUnsupportedStrategyError("imputation", strategy,
			SupportedImputeStrategies()...)
	}
}

// Fit computes the fill statistic for every column of t, ignoring NaN
// entries. Columns containing only NaN fall back to the constant fill value.
func (im *Imputer) Fit(t *dataset.Table) error {
	if t.NumRows() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Imputer.Fit")
	}
	im.Statistics = make(map[string]float64, t.NumCols())
	for _, name := range t.Columns() {
		col, err := t.Column(name)
		if err != nil {
			return err
		}
		present := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		im.Statistics[name] = im.statistic(present)
	}
	im.SetFitted()
	return nil
}

func (im *Imputer) statistic(present []float64) float64 {
	if im.Strategy == ImputeConstant || len(present) == 0 {
		return im.FillValue
	}
	switch im.Strategy {
	case ImputeMean:
		return stat.Mean(present, nil)
	case ImputeMedian:
		sorted := append([]float64(nil), present...)
		sort.Float64s(sorted)
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	case ImputeMostFrequent:
		counts := make(map[float64]int, len(present))
		for _, v := range present {
			counts[v]++
		}
		best, bestCount := math.Inf(1), 0
		for v, c := range counts {
			// Ties resolve to the smallest value for determinism.
			if c > bestCount || (c == bestCount && v < best) {
				best, bestCount = v, c
			}
		}
		return best
	}
	return im.FillValue
}

// Transform fills gaps in t using the fitted statistics and returns a new
// table. Columns that were not seen during Fit are left untouched.
func (im *Imputer) Transform(t *dataset.Table) (*dataset.Table, error) {
	if !im.IsFitted() {
		return nil, errors.NewNotFittedError("Imputer", "Transform")
	}
	out := t
	for _, name := range t.Columns() {
		fill, ok := im.Statistics[name]
		if !ok {
			continue
		}
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		hasGap := false
		for _, v := range col {
			if math.IsNaN(v) {
				hasGap = true
				break
			}
		}
		if !hasGap {
			continue
		}
		filled := make([]float64, len(col))
		for i, v := range col {
			if math.IsNaN(v) {
				filled[i] = fill
			} else {
				filled[i] = v
			}
		}
		if out, err = out.WithColumn(name, filled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FitTransform computes statistics over t and fills its gaps in one call.
func (im *Imputer) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if err := im.Fit(t); err != nil {
		return nil, err
	}
	return im.Transform(t)
}

// String returns the string representation of the imputer.
func (im *Imputer) String() string {
	return fmt.Sprintf("Imputer(strategy=%s, fitted=%t)", im.Strategy, im.IsFitted())
}

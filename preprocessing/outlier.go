package preprocessing

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
	"github.com/YuminosukeSato/rulpipe/pkg/log"
)

// Outlier detection method names accepted by NewOutlierDetector.
const (
	OutlierZScore = "z_score"
	OutlierIQR    = "iqr"
)

// SupportedOutlierMethods lists the registered outlier detection methods.
func SupportedOutlierMethods() []string {
	return []string{OutlierZScore, OutlierIQR}
}

// OutlierDetector computes dispersion bounds for one column on a reference
// (training) table and drops rows outside those bounds. Bounds must never
// be fitted on test data.
type OutlierDetector interface {
	// Fit computes lower/upper bounds for column from the reference table.
	Fit(t *dataset.Table, column string) error

	// Filter returns a new table without the rows whose fitted column
	// falls outside the bounds, plus the number of rows removed.
	Filter(t *dataset.Table) (*dataset.Table, int, error)

	// Bounds returns the fitted lower and upper bound.
	Bounds() (lower, upper float64)
}

// NewOutlierDetector resolves an outlier detection method by name.
func NewOutlierDetector(method string) (OutlierDetector, error) {
	switch method {
	case OutlierZScore:
		return &ZScoreDetector{Threshold: 3.0}, nil
	case OutlierIQR:
		return &IQRDetector{Factor: 1.5}, nil
	default:
		return nil, errors.NewUnsupportedStrategyError("outlier detection", method,
			SupportedOutlierMethods()...)
	}
}

// ZScoreDetector bounds values at mean ± Threshold standard deviations.
type ZScoreDetector struct {
	model.BaseEstimator

	// Threshold is the z-score cutoff (default: 3).
	Threshold float64

	column       string
	lower, upper float64
}

// Fit implements OutlierDetector.
func (z *ZScoreDetector) Fit(t *dataset.Table, column string) error {
	col, err := fitColumn("ZScoreDetector.Fit", t, column)
	if err != nil {
		return err
	}
	mean, std := stat.MeanStdDev(col, nil)
	z.column = column
	z.lower = mean - z.Threshold*std
	z.upper = mean + z.Threshold*std
	z.SetFitted()
	return nil
}

// Filter implements OutlierDetector.
func (z *ZScoreDetector) Filter(t *dataset.Table) (*dataset.Table, int, error) {
	if !z.IsFitted() {
		return nil, 0, errors.NewNotFittedError("ZScoreDetector", "Filter")
	}
	return filterByBounds(t, z.column, z.lower, z.upper)
}

// Bounds implements OutlierDetector.
func (z *ZScoreDetector) Bounds() (float64, float64) {
	return z.lower, z.upper
}

// IQRDetector bounds values at the quartiles ± Factor interquartile ranges.
type IQRDetector struct {
	model.BaseEstimator

	// Factor is the IQR multiplier (default: 1.5).
	Factor float64

	column       string
	lower, upper float64
}

// Fit implements OutlierDetector.
func (d *IQRDetector) Fit(t *dataset.Table, column string) error {
	col, err := fitColumn("IQRDetector.Fit", t, column)
	if err != nil {
		return err
	}
	sorted := append([]float64(nil), col...)
	sort.Float64s(sorted)
	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	d.column = column
	d.lower = q1 - d.Factor*iqr
	d.upper = q3 + d.Factor*iqr
	d.SetFitted()
	return nil
}

// Filter implements OutlierDetector.
func (d *IQRDetector) Filter(t *dataset.Table) (*dataset.Table, int, error) {
	if !d.IsFitted() {
		return nil, 0, errors.NewNotFittedError("IQRDetector", "Filter")
	}
	return filterByBounds(t, d.column, d.lower, d.upper)
}

// Bounds implements OutlierDetector.
func (d *IQRDetector) Bounds() (float64, float64) {
	return d.lower, d.upper
}

func fitColumn(op string, t *dataset.Table, column string) ([]float64, error) {
	if t.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if !t.HasColumn(column) {
		return nil, errors.NewSchemaError(op, column)
	}
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	return col, nil
}

func filterByBounds(t *dataset.Table, column string, lower, upper float64) (*dataset.Table, int, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, 0, err
	}
	keep := make([]int, 0, len(col))
	for i, v := range col {
		if v >= lower && v <= upper {
			keep = append(keep, i)
		}
	}
	removed := t.NumRows() - len(keep)
	if removed > 0 {
		slog.Info("removed outlier rows",
			log.StageAttr("outlier"),
			slog.String("column", column),
			slog.Int("removed", removed),
			slog.Float64("lower", lower),
			slog.Float64("upper", upper),
		)
	}
	return t.TakeRows(keep), removed, nil
}

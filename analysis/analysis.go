// Package analysis provides exploratory summaries and plots for turbofan
// sensor tables: per-column descriptive statistics, the RUL distribution,
// single-engine sensor trajectories and predicted-vs-actual scatter plots.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// ColumnSummary holds descriptive statistics for one column. Missing values
// are counted separately and excluded from every statistic.
type ColumnSummary struct {
	Count   int
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	Q25     float64
	Median  float64
	Q75     float64
	Max     float64
}

// Describe computes a ColumnSummary per column, in table column order.
func Describe(t *dataset.Table) (map[string]ColumnSummary, error) {
	if t.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "analysis.Describe")
	}
	out := make(map[string]ColumnSummary, t.NumCols())
	for _, name := range t.Columns() {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out[name] = summarize(col)
	}
	return out, nil
}

func summarize(col []float64) ColumnSummary {
	vals := make([]float64, 0, len(col))
	missing := 0
	for _, v := range col {
		if math.IsNaN(v) {
			missing++
			continue
		}
		vals = append(vals, v)
	}
	s := ColumnSummary{Count: len(vals), Missing: missing}
	if len(vals) == 0 {
		s.Mean = math.NaN()
		s.Std = math.NaN()
		s.Min = math.NaN()
		s.Q25 = math.NaN()
		s.Median = math.NaN()
		s.Q75 = math.NaN()
		s.Max = math.NaN()
		return s
	}
	sort.Float64s(vals)
	s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	if len(vals) == 1 {
		s.Std = 0
	}
	s.Min = vals[0]
	s.Max = vals[len(vals)-1]
	s.Q25 = stat.Quantile(0.25, stat.Empirical, vals, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	s.Q75 = stat.Quantile(0.75, stat.Empirical, vals, nil)
	return s
}

// EngineTrajectory extracts the (cycle, value) series of one sensor for a
// single engine, ordered by cycle.
func EngineTrajectory(t *dataset.Table, engineID float64, sensor string) (cycles, values []float64, err error) {
	engines, err := t.Column(dataset.ColEngineID)
	if err != nil {
		return nil, nil, err
	}
	cycleCol, err := t.Column(dataset.ColCycle)
	if err != nil {
		return nil, nil, err
	}
	sensorCol, err := t.Column(sensor)
	if err != nil {
		return nil, nil, err
	}
	for i, e := range engines {
		if e == engineID {
			cycles = append(cycles, cycleCol[i])
			values = append(values, sensorCol[i])
		}
	}
	if len(cycles) == 0 {
		return nil, nil, errors.NewValueError("analysis.EngineTrajectory",
			"no rows for the requested engine")
	}
	order := make([]int, len(cycles))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return cycles[order[i]] < cycles[order[j]] })
	sortedCycles := make([]float64, len(order))
	sortedValues := make([]float64, len(order))
	for i, o := range order {
		sortedCycles[i] = cycles[o]
		sortedValues[i] = values[o]
	}
	return sortedCycles, sortedValues, nil
}

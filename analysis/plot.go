package analysis

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// SaveRULHistogram renders the RUL distribution of a labeled table to an
// image file. The format follows the filename extension (png, svg, pdf).
func SaveRULHistogram(t *dataset.Table, bins int, filename string) error {
	rul, err := t.Column(dataset.ColRUL)
	if err != nil {
		return err
	}
	vals := make(plotter.Values, 0, len(rul))
	for _, v := range rul {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "analysis.SaveRULHistogram")
	}

	p := plot.New()
	p.Title.Text = "RUL distribution"
	p.X.Label.Text = "remaining useful life (cycles)"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return errors.Wrap(err, "analysis.SaveRULHistogram")
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "saving %s", filename)
	}
	return nil
}

// SaveSensorTrajectory renders one sensor's readings over the life of a
// single engine.
func SaveSensorTrajectory(t *dataset.Table, engineID float64, sensor, filename string) error {
	cycles, values, err := EngineTrajectory(t, engineID, sensor)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, engine %.0f", sensor, engineID)
	p.X.Label.Text = "cycle"
	p.Y.Label.Text = sensor

	pts := make(plotter.XYs, len(cycles))
	for i := range cycles {
		pts[i].X = cycles[i]
		pts[i].Y = values[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "analysis.SaveSensorTrajectory")
	}
	l.Color = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	p.Add(l)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "saving %s", filename)
	}
	return nil
}

// SavePredictionScatter renders predicted against actual RUL with the
// identity line, the usual first look at a trained regressor.
func SavePredictionScatter(yTrue, yPred []float64, filename string) error {
	if len(yTrue) != len(yPred) {
		return errors.NewDimensionError("analysis.SavePredictionScatter", len(yTrue), len(yPred), 0)
	}
	if len(yTrue) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "analysis.SavePredictionScatter")
	}

	p := plot.New()
	p.Title.Text = "predicted vs actual RUL"
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	pts := make(plotter.XYs, len(yTrue))
	lo, hi := yTrue[0], yTrue[0]
	for i := range yTrue {
		pts[i].X = yTrue[i]
		pts[i].Y = yPred[i]
		lo = math.Min(lo, math.Min(yTrue[i], yPred[i]))
		hi = math.Max(hi, math.Max(yTrue[i], yPred[i]))
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "analysis.SavePredictionScatter")
	}
	s.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(s)

	ident, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "analysis.SavePredictionScatter")
	}
	ident.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	p.Add(ident)

	if err := p.Save(5*vg.Inch, 5*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "saving %s", filename)
	}
	return nil
}
